package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"studybuddy/internal/auth"
	"studybuddy/internal/config"
	"studybuddy/internal/embedding"
	"studybuddy/internal/llm"
	"studybuddy/internal/rag"
	"studybuddy/internal/server"
	"studybuddy/internal/store"
	"studybuddy/internal/userstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Error loading config")
	}

	ctx := context.Background()

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating embedder")
	}
	embedFunc := embedding.Func(embedder)

	s, err := store.Open(cfg.Store.Path, cfg.Store.InMemory)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Error opening vector store")
	}

	memoryCol, err := s.Collection(rag.TimetableMemoryCollection, embedFunc)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating timetable memory collection")
	}
	materialsCol, err := s.Collection(rag.StudyMaterialsCollection, embedFunc)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating study materials collection")
	}
	knowledgeCol, err := s.Collection(rag.CircadianCollection, embedFunc)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating circadian knowledge collection")
	}

	gen, err := llm.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating generator")
	}

	timetable := rag.NewTimetable(memoryCol, materialsCol, gen, cfg.RAG)
	circadian := rag.NewCircadian(knowledgeCol, gen, cfg.RAG)
	google := auth.NewClient(cfg.Google)

	var users *userstore.Store
	if cfg.Database.Enabled {
		users = userstore.Connect(&cfg.Database)
		defer users.Close()
		if err := users.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing user table")
		}
	}

	h := server.NewHandler(timetable, circadian, google, users, cfg.Server.FrontendURL)
	r := server.NewRouter(h)

	log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
