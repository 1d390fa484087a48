package handler

import (
	"pairchat/internal/app/chat"
	"pairchat/internal/app/messaging"
	"pairchat/internal/configs"
)

// AppDeps bundles the components handlers depend on. Everything is constructed
// in main and injected; handlers hold no state of their own.
type AppDeps struct {
	Config   *configs.AppConfig
	Registry *chat.Registry
	Resolver *messaging.Resolver
	Messages *messaging.Service
	Storage  messaging.Storage
}
