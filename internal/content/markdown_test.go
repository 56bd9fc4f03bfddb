package content_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"motorline.org/motorline-web/internal/content"
)

func TestDescriptionRendersMarkdown(t *testing.T) {
	t.Parallel()

	out := string(content.Description("Single owner, **no accidents**."))
	require.Contains(t, out, "<strong>no accidents</strong>")
}

func TestDescriptionStripsScripts(t *testing.T) {
	t.Parallel()

	out := string(content.Description(`Nice car <script>alert("x")</script>`))
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "Nice car")
}

func TestDescriptionEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", strings.TrimSpace(string(content.Description(""))))
}
