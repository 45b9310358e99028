// Command playlist-charts serves the playlist analysis web application.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mgreer/playlist-charts/internal/config"
	"github.com/mgreer/playlist-charts/internal/session"
	"github.com/mgreer/playlist-charts/internal/spotify"
	"github.com/mgreer/playlist-charts/internal/store"
	"github.com/mgreer/playlist-charts/internal/web"
	webfs "github.com/mgreer/playlist-charts/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	initConfig := flag.Bool("init-config", false, "write an example config file and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *initConfig {
		if err := config.WriteExample(*configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote example config to %s; fill in your Spotify credentials.\n", *configPath)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	auth := spotify.NewAuthenticator(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectURI)
	sessions := session.NewManager(store.NewSessionStore(cfg.Data.Dir), auth)
	genres := store.NewGenreCache(cfg.Data.Dir)

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:        cfg.Server.Addr(),
		Auth:        auth,
		Sessions:    sessions,
		Genres:      genres,
		Logger:      logger,
		TemplatesFS: templates,
		StaticFS:    static,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
