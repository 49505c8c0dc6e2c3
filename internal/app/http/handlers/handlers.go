package handlers

import (
	"handwerk-crm/go_backend/internal/app/config"
	"handwerk-crm/go_backend/internal/chat"
	"handwerk-crm/go_backend/internal/domain/crm"
	"handwerk-crm/go_backend/internal/domain/document"
	"handwerk-crm/go_backend/internal/tool"
)

type Handlers struct {
	Store    crm.Store
	Registry *tool.Registry
	Chat     *chat.Service
	PDF      document.Generator
	Cfg      config.Config
}

func New(store crm.Store, registry *tool.Registry, chatSvc *chat.Service, pdf document.Generator, cfg config.Config) *Handlers {
	return &Handlers{
		Store:    store,
		Registry: registry,
		Chat:     chatSvc,
		PDF:      pdf,
		Cfg:      cfg,
	}
}
