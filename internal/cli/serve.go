package cli

import (
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/devserver"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, data string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference todo service",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			if data == "" {
				data = app.cfg.Server.Data
			}
			var file string
			if data != "" {
				p, err := jsonstore.Resolve(data)
				if err != nil {
					return err
				}
				file = p
			}
			srv, err := devserver.New(devserver.Options{
				DataFile: file,
				Logger:   app.log.Named("devserver"),
			})
			if err != nil {
				return err
			}
			app.log.Named("devserver").Info("serving todos", "addr", addr, "data", file, "prefix", "/api")
			return srv.Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr, :8080)")
	cmd.Flags().StringVar(&data, "data", "", "JSON file or directory to persist to (default in memory)")
	return cmd
}
