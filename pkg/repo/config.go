package repo

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

func (r *Repo) configPath() string {
	return r.metaPath("config")
}

// ReadConfig parses the repository config file. The file uses the
// git-style INI format ([core], [remote "name"] sections). Missing
// config returns an empty document.
func (r *Repo) ReadConfig() (*format.Config, error) {
	cfg := format.New()
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := format.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically replaces the repository config file.
func (r *Repo) WriteConfig(cfg *format.Config) error {
	if cfg == nil {
		cfg = format.New()
	}
	var buf bytes.Buffer
	if err := format.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.KeelDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// AddRemote registers a named remote URL in repository config. Fails
// with ErrAlreadyExists if the name is already taken.
func (r *Repo) AddRemote(name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("add remote: remote name is required")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("add remote: remote URL is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	if cfg.Section("remote").HasSubsection(name) {
		return fmt.Errorf("add remote: remote %q %w", name, ErrAlreadyExists)
	}
	cfg.Section("remote").Subsection(name).SetOption("url", remoteURL)
	return r.WriteConfig(cfg)
}

// SetRemoteURL replaces the URL of an existing remote.
func (r *Repo) SetRemoteURL(name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote url: remote name is required")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("set remote url: remote URL is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	if !cfg.Section("remote").HasSubsection(name) {
		return fmt.Errorf("set remote url: remote %q is not configured", name)
	}
	cfg.Section("remote").Subsection(name).SetOption("url", remoteURL)
	return r.WriteConfig(cfg)
}

// RemoteURL returns the configured URL for the given remote name.
func (r *Repo) RemoteURL(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("remote name is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	if !cfg.Section("remote").HasSubsection(name) {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	url := strings.TrimSpace(cfg.Section("remote").Subsection(name).Option("url"))
	if url == "" {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	return url, nil
}

// Remotes lists configured remote names and URLs sorted by name.
func (r *Repo) Remotes() ([][2]string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for _, sub := range cfg.Section("remote").Subsections {
		out = append(out, [2]string{sub.Name, sub.Option("url")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}
