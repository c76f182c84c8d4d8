package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/api"
	"github.com/axellelanca/linkshelf/internal/monitor"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur web du gestionnaire de favoris.",
	Long: `Cette commande ouvre le stockage configuré (SQLite, PostgreSQL ou JSON),
crée le schéma et les tags par défaut, démarre le moniteur de titres
si un intervalle est configuré, puis lance le serveur HTTP.`,
	Run: func(command *cobra.Command, args []string) {
		cfg := cmd.Cfg

		app, err := cmd.OpenApp(cfg)
		if err != nil {
			log.Fatalf("Échec de l'initialisation du stockage : %v", err)
		}
		defer app.Close()
		log.Println("Services métiers initialisés.")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Le moniteur de titres est désactivé quand l'intervalle vaut 0.
		if interval := cfg.MonitorInterval(); interval > 0 {
			titleMonitor := monitor.NewTitleMonitor(app.Service, interval)
			go titleMonitor.Start(ctx)
			log.Printf("Moniteur de titres démarré avec un intervalle de %v.", interval)
		}

		if !cfg.Server.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.Default()
		api.SetupRoutes(router, app.Service)
		log.Println("Routes configurées.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Démarrer le serveur dans une goroutine pour ne pas bloquer.
		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Échec du démarrage du serveur : %v", err)
				stop()
			}
		}()

		// Bloquer jusqu'à Ctrl+C, SIGTERM ou l'échec du serveur.
		<-ctx.Done()
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		// Pas d'os.Exit ici : les defers ferment la base de données.
		if err := shutdown(srv, cfg.Server.ShutdownTimeout); err != nil {
			log.Printf("Arrêt forcé du serveur : %v", err)
			return
		}

		log.Println("Serveur arrêté proprement.")
	},
}

// shutdown attend la fin des requêtes en cours pendant au plus timeout.
func shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
