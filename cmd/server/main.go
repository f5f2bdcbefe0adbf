package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/logging"
	"github.com/yourusername/elalgpt/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP service address")
	responder := flag.String("responder", "gemini", "reply source: gemini or echo")
	model := flag.String("model", server.DefaultGeminiModel, "Gemini model name")
	timeout := flag.Duration("timeout", 60*time.Second, "limit for one completion")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	logger, err := logging.NewConsole("info", *verbose)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer logger.Sync()

	var r server.Responder
	switch *responder {
	case "echo":
		r = server.Echo
	case "gemini":
		g, err := server.NewGemini(context.Background(), os.Getenv("GEMINI_API_KEY"), *model)
		if err != nil {
			logger.Fatal("gemini responder", zap.Error(err))
		}
		logger.Info("using gemini", zap.String("model", g.Model()))
		r = g
	default:
		logger.Fatal("unknown responder", zap.String("responder", *responder))
	}

	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(r, logger, *timeout)

	logger.Info("starting server", zap.String("addr", *addr), zap.String("responder", *responder))
	if err := srv.Router().Run(*addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
