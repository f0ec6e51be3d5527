package app

import (
	"fmt"

	"flewid/internal/config"
	"flewid/internal/filter"
	"flewid/internal/server"
	"flewid/internal/templates"
	"flewid/internal/transform"
	"flewid/internal/variables"
	"flewid/pkg/logging"
)

// Services holds all the initialized services
type Services struct {
	Executor        *transform.Executor
	Resolver        *variables.Resolver
	TemplateStorage *templates.TemplateStorage
	Server          *server.FlewidServer
}

// InitializeServices creates the services and registers their API adapters
func InitializeServices(cfg *Config) (*Services, error) {
	flewidCfg := cfg.FlewidConfig
	if flewidCfg == nil {
		defaults := config.GetDefaultConfig()
		flewidCfg = &defaults
		cfg.FlewidConfig = flewidCfg
	}

	templateDir, err := templatesDirectory(cfg)
	if err != nil {
		return nil, err
	}

	storage, err := templates.NewTemplateStorage(templates.Options{
		ConfigDir:      templateDir,
		ConfigPath:     cfg.ConfigPath,
		IncludeBuiltin: flewidCfg.Templates.BuiltinTemplatesEnabled(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if loadErrors := storage.LoadErrors(); loadErrors.HasErrors() {
		for _, loadErr := range loadErrors.Errors {
			logging.Warn("Bootstrap", "Skipped template file: %s", loadErr.Error())
		}
	}

	executor := transform.NewExecutor(transform.Config{
		Timeout:         flewidCfg.Transform.Timeout,
		MaxSnippetBytes: flewidCfg.Transform.MaxSnippetBytes,
		MaxCallDepth:    flewidCfg.Transform.MaxCallDepth,
	})
	resolver := variables.NewResolver()

	// Adapters must be registered before any tool is called
	transform.NewAPIAdapter(executor).Register()
	filter.NewAPIAdapter().Register()
	variables.NewAPIAdapter(resolver).Register()
	templates.NewAPIAdapter(storage, templates.NewInstantiator(storage, resolver)).Register()

	serverCfg := cfg.serverConfig()
	flewidServer := server.NewFlewidServer(server.Config{
		Host:      serverCfg.Host,
		Port:      serverCfg.Port,
		Transport: serverCfg.Transport,
		Version:   cfg.Version,
		Stdin:     cfg.Stdin,
		Stdout:    cfg.Stdout,
	}, storage.GetChangeChannel())

	logging.Debug("Bootstrap", "Registered handlers, %d templates in catalog", len(storage.ListTemplates()))

	return &Services{
		Executor:        executor,
		Resolver:        resolver,
		TemplateStorage: storage,
		Server:          flewidServer,
	}, nil
}

// templatesDirectory picks where authored templates are written.
func templatesDirectory(cfg *Config) (string, error) {
	if dir := cfg.FlewidConfig.Templates.Directory; dir != "" {
		return dir, nil
	}
	if cfg.ConfigPath != "" {
		return cfg.ConfigPath, nil
	}
	dir, err := config.GetUserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return dir, nil
}
