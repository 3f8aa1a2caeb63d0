// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/color"
	"github.com/streamscout-cli/streamscout/constant"
	"github.com/streamscout-cli/streamscout/key"
	"github.com/streamscout-cli/streamscout/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Streamscout + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.Target, "any", "Runtime capability class of the caller.\nAvailable options are: browser, browser-extension, native, any")
	register(key.RequestsConsistentIP, true, "Whether the initial request and the stream request are guaranteed to come from the same IP.\nWhen false, IP-locked streams are never used")
	register(key.RequestsTimeout, 30, "Per-request ceiling in seconds for provider and probe calls")
	register(key.SourcesOrder, []string{}, "Explicit source id ordering override.\nListed sources run first, in order; the rest follow by descending rank.\nType \"streamscout providers\" to show registered sources")
	register(key.EmbedsOrder, []string{}, "Explicit embed id ordering override applied to deferred embeds")
	register(key.ProxyBaseURL, constant.DefaultProxyBase, "Base URL of the stream-rewriting proxy.\nMalformed values degrade to the built-in default")
	register(key.ProxyStreams, true, "Rewrite streams through the proxy when the caller's runtime cannot fetch them directly")
	register(key.ProxyOrigin, "", "Origin used to resolve root-relative proxy base URLs.\nLeave empty if the caller has no own origin")
	register(key.NetworkSpoofTLS, true, "Use the browser-fingerprint TLS client for scraper traffic.\nRequired by origins that reject stock Go clients")
	register(key.NetworkCacheResponses, false, "Cache fingerprinted GET responses on disk to avoid re-fetching scrape pages")
	register(key.HistorySaveOnResolve, true, "Remember the winning source per media after a successful resolution")
	register(key.HistorySeedOrdering, true, "Try the previously winning source first on repeat resolutions")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
