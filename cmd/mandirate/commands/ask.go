package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/mandirate/internal/lang"
	"github.com/nadzzz/mandirate/internal/message"
	"github.com/nadzzz/mandirate/internal/session"
)

func askCmd() *cobra.Command {
	var (
		source string
		target string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Answer one price question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := newEngine()
			gw := session.NewGateway(eng.dispatcher.Handle,
				lang.Resolve(cfg.Engine.DefaultLanguage, lang.Default))

			text := strings.Join(args, " ")
			q := gw.NewQuery(&message.QueryEvent{Message: &text, SourceLang: source, TargetLang: target})
			res, err := eng.dispatcher.Handle(cmd.Context(), q)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Println(res.TranslatedMessage)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "language the question is in (en, hi)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "language to answer in (en, hi)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result event")
	return cmd
}
