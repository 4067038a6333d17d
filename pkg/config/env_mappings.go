package config

import (
	"reflect"
	"sort"
	"sync"
)

// EnvBinding ties an environment variable to a dotted configuration key.
type EnvBinding struct {
	Env string
	Key string
}

type envIndex struct {
	bindings []EnvBinding
	byEnv    map[string]string
	byKey    map[string]string
}

// envBindings is built once from the `env` tags on Config.
var envBindings = sync.OnceValue(func() envIndex {
	idx := envIndex{byEnv: make(map[string]string), byKey: make(map[string]string)}
	collectEnvBindings(reflect.TypeFor[Config](), "", &idx)
	sort.Slice(idx.bindings, func(i, j int) bool { return idx.bindings[i].Key < idx.bindings[j].Key })
	return idx
})

func collectEnvBindings(t reflect.Type, prefix string, idx *envIndex) {
	for i := range t.NumField() {
		field := t.Field(i)
		name := field.Tag.Get("koanf")
		if !field.IsExported() || name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct {
			collectEnvBindings(field.Type, key, idx)
			continue
		}
		if env := field.Tag.Get("env"); env != "" && env != "-" {
			idx.bindings = append(idx.bindings, EnvBinding{Env: env, Key: key})
			idx.byEnv[env] = key
			idx.byKey[key] = env
		}
	}
}

// EnvBindings lists every environment variable the loader reads, ordered by key.
func EnvBindings() []EnvBinding {
	return append([]EnvBinding(nil), envBindings().bindings...)
}

// KeyForEnv returns the configuration key bound to env.
func KeyForEnv(env string) (string, bool) {
	key, ok := envBindings().byEnv[env]
	return key, ok
}

// EnvForKey returns the environment variable bound to key, or "" when none is.
func EnvForKey(key string) string {
	return envBindings().byKey[key]
}
