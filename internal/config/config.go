package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"knot/internal/date"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "knot.db"
	appDirName            = "knot"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Bottom        string `toml:"bottom"`
	Toggle        string `toml:"toggle"`
	MoveUp        string `toml:"move_up"`
	MoveDown      string `toml:"move_down"`
	Insert        string `toml:"insert"`
	InsertSubtask string `toml:"insert_subtask"`
	Edit          string `toml:"edit"`
	Command       string `toml:"command"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
}

type Config struct {
	DBPath         string `toml:"db_path"`
	DefaultCluster string `toml:"default_cluster"`
	ShowCreated    bool   `toml:"show_created"`
	YearPivot      int    `toml:"year_pivot"`
	Keys           Keymap `toml:"keys"`
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.DefaultCluster == "" {
		cfg.DefaultCluster = "main"
	}
	if cfg.YearPivot < 1 || cfg.YearPivot > 99 {
		cfg.YearPivot = date.DefaultYearPivot
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	header := "# knot configuration\n" +
		"#\n" +
		"# year_pivot controls two-digit years in [d:M/D/YY] tags: years below\n" +
		"# the pivot fall in the 2000s, the rest in the 1900s. The default 69\n" +
		"# reads 00-68 as 2000-2068 and 69-99 as 1969-1999.\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:         DefaultDBPath(),
		DefaultCluster: "main",
		ShowCreated:    false,
		YearPivot:      date.DefaultYearPivot,
		Keys: Keymap{
			Quit:          "q",
			Up:            "k",
			Down:          "j",
			Bottom:        "G",
			Toggle:        "enter",
			MoveUp:        "K",
			MoveDown:      "J",
			Insert:        "i",
			InsertSubtask: "tab",
			Edit:          "e",
			Command:       ":",
			Confirm:       "enter",
			Cancel:        "esc",
		},
	}
}

func ResolveConfigPath() string {
	if p := os.Getenv("KNOT_CONFIG"); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName, DefaultConfigFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", appDirName, DefaultConfigFileName)
}

func DefaultDBPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDirName, DefaultDBName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(home, ".local", "share", appDirName, DefaultDBName)
}
