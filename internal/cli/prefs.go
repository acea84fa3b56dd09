package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pulseboard/internal/prefs"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or reset the stored dashboard preferences",
	}
	cmd.AddCommand(newPrefsShowCmd(app))
	cmd.AddCommand(newPrefsResetCmd(app))
	return cmd
}

func newPrefsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored preference document as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(app)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			doc, err := store.Read(ctx)
			if err != nil {
				return err
			}

			out := map[string]any{
				prefs.KeyActiveWidgets: doc.ActiveWidgets,
				prefs.KeyLayout:        doc.Layouts,
				prefs.KeyVisibility:    doc.Visibility,
			}
			for k, v := range doc.Extra {
				out[k] = json.RawMessage(v)
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func newPrefsResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the board configuration (other preference keys survive)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(app)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			// Writing empty owned keys leaves every foreign key untouched;
			// the next dashboard start re-seeds the default board.
			err = store.Write(ctx, prefs.Document{
				ActiveWidgets: []string{},
				Layouts:       map[string]prefs.Rect{},
				Visibility:    map[string]bool{},
			})
			if err != nil {
				return err
			}
			app.Logger.Info("dashboard preferences cleared")
			return nil
		},
	}
}
