package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spent/internal/api"
	"github.com/Veraticus/spent/internal/certs"
	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/config"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve categories, expenses, budgets and dashboard data over HTTP.

Every /api request names its user in the X-User-ID header.

With --tls the API is served over HTTPS using a self-signed certificate for
localhost, created on first use and renewed before it expires.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default "+config.DefaultServerAddr+")")
	cmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origin (repeatable)")
	cmd.Flags().Duration("request-timeout", 30*time.Second, "per-request timeout")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.cors_origins", cmd.Flags().Lookup("cors-origin"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("request-timeout")
	useTLS, _ := cmd.Flags().GetBool("tls")

	return withApp(cmd, func(ctx context.Context, a *app) error {
		handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Server").
			WithHint("Waiting for open requests to finish.")
		ctx = handler.HandleInterrupts(ctx)

		srv := &http.Server{
			Addr: config.ServerAddr(),
			Handler: api.NewServer(a.store, a.clock).Routes(api.Options{
				AllowedOrigins: viper.GetStringSlice("server.cors_origins"),
				RequestTimeout: timeout,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		scheme := "http"
		if useTLS {
			store := certs.NewStore(config.CertDir(), a.clock)
			tlsConfig, err := store.TLSConfig()
			if err != nil {
				return fmt.Errorf("failed to prepare TLS certificate: %w", err)
			}
			srv.TLSConfig = tlsConfig
			scheme = "https"
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Certificate: "+store.CertFile()))
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Listening", "addr", srv.Addr, "scheme", scheme)
			if useTLS {
				errCh <- srv.ListenAndServeTLS("", "")
				return
			}
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Serving on %s://%s", scheme, srv.Addr)))

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		slog.Info("Server stopped")
		return nil
	})
}
