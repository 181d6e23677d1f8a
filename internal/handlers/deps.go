package handlers

import (
	"github.com/trackline-dev/trackline/internal/middleware"
	"github.com/trackline-dev/trackline/internal/services"
	"github.com/trackline-dev/trackline/internal/storage"
	"github.com/trackline-dev/trackline/internal/store"
)

var (
	notifier *services.Notifier
	mailer   *services.Mailer
	uploads  *storage.Store
)

// Init wires the services constructed in main. Must be called before the
// router starts serving.
func Init(n *services.Notifier, m *services.Mailer, u *storage.Store) {
	notifier = n
	mailer = m
	uploads = u
}

func principalOf(user middleware.AuthenticatedUser) store.Principal {
	return store.Principal{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}
