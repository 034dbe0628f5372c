package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deck-recommender/internal/server"
	"deck-recommender/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, user, err := loadData(cmd.Context())
		if err != nil {
			return err
		}
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		reg, err := server.NewRegistry()
		if err != nil {
			return err
		}
		srv := server.New(tables, user, history)
		if d := viper.GetDuration("server.timeout"); d > 0 {
			srv.Timeout = d
		}
		e := srv.Echo(reg)

		addr := viper.GetString("server.listen")
		go func() {
			utils.Log.Infof("Server starting on %s", addr)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.Log.Fatalf("Failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		utils.Log.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Duration("timeout", server.DefaultTimeout, "Upper bound on one recommend request")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
}
