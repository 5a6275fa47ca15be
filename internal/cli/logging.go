package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"bybitsnap/internal/config"
	"bybitsnap/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Proxy token: %s", presence(strings.TrimSpace(cfg.ProxyToken) != "")),
		fmt.Sprintf("Timezone: %s", cfg.Snapshot.Timezone),
		fmt.Sprintf("Symbols: %s / %s", cfg.Snapshot.PrimarySymbol, cfg.Snapshot.SecondarySymbol),
		fmt.Sprintf("Telegram: %s", presence(strings.TrimSpace(cfg.Notify.Token) != "")),
		sectionLine("Storage config", cfg.Storage),
		sectionLine("Market config", cfg.Market),
	}
	if cfg.Storage.Value != nil {
		lines = append(lines,
			fmt.Sprintf("Repository: %s@%s", cfg.Storage.Value.Repo, cfg.Storage.Value.Branch),
			fmt.Sprintf("GitHub token: %s", presence(cfg.Storage.Value.Token != "")))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
