package csync

import (
	"embed"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/cobrax/topics"
)

//go:embed topics/*.md
var topicsFS embed.FS

// installTopics adds the help topics. A broken embed only loses the
// topics, so failures are logged and help falls back to commands.
func installTopics(rootCmd *cobra.Command) {
	m, err := topics.Load(topicsFS, "topics", topics.Options{
		Renderer: topics.MarkdownRenderer{Width: 80, Color: stdoutIsTerminal()},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m.Install(rootCmd)
	rootCmd.SetHelpCommandGroupID("misc")
}
