// Package config loads the JSON configuration document consumed by
// httpparsedemo: three required sections (server, db, log), each
// decoded into a typed struct. A key absent from its section is an
// error — the original C loader dereferenced the field unconditionally
// and would have segfaulted on an absent key, so "missing is fatal" is
// preserved here as an explicit check instead.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/reveldb/httpparse/internal/plog"
)

// ErrMissingField is wrapped by Load when a required key is absent
// from its section.
var ErrMissingField = errors.New("missing required config field")

// Server mirrors the original reveldb_server_config_t. Ports accepts
// either a JSON array of numbers or a single scalar number, since the
// original C struct carried one port per instance.
type Server struct {
	Host     string `mapstructure:"host"`
	Ports    []int  `mapstructure:"-"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DataDir  string `mapstructure:"datadir"`
	PidFile  string `mapstructure:"pidfile"`
}

// DB mirrors the original reveldb_db_config_t.
type DB struct {
	DBName               string `mapstructure:"dbname"`
	LRUCacheSize         int    `mapstructure:"-"`
	WriteBufferSize      int    `mapstructure:"-"`
	MaxOpenFiles         int    `mapstructure:"-"`
	BlockSize            int    `mapstructure:"-"`
	BlockRestartInterval int    `mapstructure:"-"`
	CreateIfMissing      bool   `mapstructure:"-"`
	ErrorIfExist         bool   `mapstructure:"-"`
	ParanoidChecks       bool   `mapstructure:"-"`
	Compression          bool   `mapstructure:"-"`
	VerifyChecksums      bool   `mapstructure:"-"`
	FillCache            bool   `mapstructure:"-"`
	Sync                 bool   `mapstructure:"-"`
}

// Log mirrors the original reveldb_log_config_t.
type Log struct {
	Level  string `mapstructure:"level"`
	Stream string `mapstructure:"stream"`
}

// Config is the fully decoded configuration document.
type Config struct {
	Server Server
	DB     DB
	Log    Log
}

var requiredServerKeys = []string{"host", "ports", "username", "password", "datadir", "pidfile"}
var requiredDBKeys = []string{
	"dbname", "lru_cache_size", "create_if_missing", "error_if_exist",
	"write_buffer_size", "paranoid_checks", "max_open_files", "block_size",
	"block_restart_interval", "compression", "verify_checksums", "fill_cache", "sync",
}
var requiredLogKeys = []string{"level", "stream"}

// Load reads path, parses it as JSON, and decodes each of the three
// required sections into a typed struct. Every key the original loader
// dereferenced is required; an absent key returns a wrapped
// ErrMissingField naming the section and field.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		plog.Errorf("config: %s: %v", path, err)
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s as JSON", path)
	}

	server, err := section(doc, "server", requiredServerKeys)
	if err != nil {
		return nil, err
	}
	db, err := section(doc, "db", requiredDBKeys)
	if err != nil {
		return nil, err
	}
	logSec, err := section(doc, "log", requiredLogKeys)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	if err := mapstructure.Decode(server, &cfg.Server); err != nil {
		return nil, errors.Wrap(err, "decoding server section")
	}
	ports, err := decodePorts(server["ports"])
	if err != nil {
		return nil, errors.Wrap(err, "decoding server.ports")
	}
	cfg.Server.Ports = ports

	if err := decodeDB(db, &cfg.DB); err != nil {
		return nil, err
	}
	if err := mapstructure.Decode(logSec, &cfg.Log); err != nil {
		return nil, errors.Wrap(err, "decoding log section")
	}

	return cfg, nil
}

// section fetches doc[name] as a sub-map and verifies every key in
// required is present, the way _init_internal_config dereferenced each
// cJSON_GetObjectItem result without a nil check.
func section(doc map[string]interface{}, name string, required []string) (map[string]interface{}, error) {
	raw, ok := doc[name]
	if !ok {
		return nil, errors.Wrapf(ErrMissingField, "section %q", name)
	}
	sub, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("section %q is not a JSON object", name)
	}
	for _, key := range required {
		if _, ok := sub[key]; !ok {
			return nil, errors.Wrapf(ErrMissingField, "%s.%s", name, key)
		}
	}
	return sub, nil
}

func decodePorts(v interface{}) ([]int, error) {
	switch t := v.(type) {
	case []interface{}:
		out := make([]int, len(t))
		for i, e := range t {
			n, err := cast.ToIntE(e)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			out[i] = n
		}
		return out, nil
	default:
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	}
}

// decodeDB fills DB field by field so the boolean 0/1 coercion spec.md
// §6 describes ("booleans are encoded as integers 0/1") goes through
// cast.ToBoolE instead of mapstructure's own (string-based) bool
// decoding, matching xconfig.c's `iter->valueint == 1` check.
func decodeDB(sec map[string]interface{}, db *DB) error {
	var err error
	str := func(key string) string {
		s, e := cast.ToStringE(sec[key])
		if e != nil && err == nil {
			err = errors.Wrapf(e, "db.%s", key)
		}
		return s
	}
	num := func(key string) int {
		n, e := cast.ToIntE(sec[key])
		if e != nil && err == nil {
			err = errors.Wrapf(e, "db.%s", key)
		}
		return n
	}
	boolean := func(key string) bool {
		b, e := cast.ToBoolE(sec[key])
		if e != nil && err == nil {
			err = errors.Wrapf(e, "db.%s", key)
		}
		return b
	}

	db.DBName = str("dbname")
	db.LRUCacheSize = num("lru_cache_size")
	db.WriteBufferSize = num("write_buffer_size")
	db.MaxOpenFiles = num("max_open_files")
	db.BlockSize = num("block_size")
	db.BlockRestartInterval = num("block_restart_interval")
	db.CreateIfMissing = boolean("create_if_missing")
	db.ErrorIfExist = boolean("error_if_exist")
	db.ParanoidChecks = boolean("paranoid_checks")
	db.Compression = boolean("compression")
	db.VerifyChecksums = boolean("verify_checksums")
	db.FillCache = boolean("fill_cache")
	db.Sync = boolean("sync")

	return err
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Server:%+v DB:%+v Log:%+v}", c.Server, c.DB, c.Log)
}
