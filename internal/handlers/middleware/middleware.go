package middleware

import (
	"kamwaalay/config"
	"kamwaalay/internal/database"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	DB           database.DB
	userRepo     repositories.UserRepository
	tokenService *services.TokenService
	Config       config.Config
	log          logger.Logger
}

func New(
	db database.DB,
	services services.Service,
	config config.Config,
	repos repositories.Repository,
) Middleware {
	return Middleware{
		DB:           db,
		userRepo:     repos.User,
		tokenService: services.Token,
		Config:       config,
		log:          logger.New("middleware"),
	}
}
