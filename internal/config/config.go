package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"vnotes/internal/errors"
)

// Config holds everything the pipeline needs: credentials, service
// endpoints, filesystem locations, and structuring knobs. It is built once
// at startup and passed into each operation, never mutated.
type Config struct {
	// BaseDir is the per-user state directory (default ~/.vnotes).
	BaseDir string
	// IngressDir is where new recordings are dropped.
	IngressDir string
	// ArchiveDir is where processed recordings are kept.
	ArchiveDir string

	// NotionToken authenticates against the planner document API.
	NotionToken string
	// AudioLinkPrefix is prepended to object keys to build audio deep links.
	AudioLinkPrefix string
	// StorageBucket is the object storage bucket for archived audio.
	StorageBucket string
	// StorageProfile names the credential profile in profiles/<name>.env.
	StorageProfile string

	// Profile-supplied service credentials.
	StorageURL      string
	StorageKey      string
	TranscribeURL   string
	TranscribeToken string

	// PollInterval is the wait between transcription status checks.
	PollInterval time.Duration
	// PollTimeout bounds the whole wait for a transcription job.
	PollTimeout time.Duration

	// GapThreshold starts a new block when the silence between two segments
	// reaches this many seconds.
	GapThreshold float64
	// TimestampEvery injects an inline [h:mm:ss] marker into block text at
	// this interval of audio time. Zero disables markers.
	TimestampEvery float64
}

// Defaults for tunables not present in the secrets files.
const (
	defaultPollInterval   = 3 * time.Second
	defaultPollTimeout    = 10 * time.Minute
	defaultGapThreshold   = 5.0
	defaultTimestampEvery = 60.0
)

// requiredKeys must appear across the secrets files.
var requiredKeys = []string{
	"NOTION_TOKEN",
	"AUDIO_LINK_PREFIX",
	"STORAGE_BUCKET",
	"STORAGE_PROFILE",
}

// profileKeys must appear in the referenced credential profile.
var profileKeys = []string{
	"STORAGE_URL",
	"STORAGE_KEY",
	"TRANSCRIBE_URL",
	"TRANSCRIBE_TOKEN",
}

// Load reads every *.secret.env file under baseDir/secrets, resolves the
// referenced credential profile from baseDir/profiles, and returns the
// assembled configuration. The baseDir parameter allows tests to use
// t.TempDir() instead of ~/.vnotes.
func Load(baseDir string) (*Config, error) {
	secretsDir := filepath.Join(baseDir, "secrets")
	values, err := readEnvDir(secretsDir, "*.secret.env")
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, k := range requiredKeys {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewConfiguration(
			fmt.Sprintf("missing required keys in %s: %s", secretsDir, strings.Join(missing, ", ")))
	}

	profile := values["STORAGE_PROFILE"]
	profilePath := filepath.Join(baseDir, "profiles", profile+".env")
	profileValues, err := readEnvFile(profilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfiguration(
				fmt.Sprintf("credential profile %q does not exist (expected %s)", profile, profilePath))
		}
		return nil, errors.NewConfiguration(fmt.Sprintf("read profile %q: %v", profile, err))
	}

	missing = missing[:0]
	for _, k := range profileKeys {
		if profileValues[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewConfiguration(
			fmt.Sprintf("profile %q is missing keys: %s", profile, strings.Join(missing, ", ")))
	}

	cfg := &Config{
		BaseDir:    baseDir,
		IngressDir: filepath.Join(baseDir, "ingress"),
		ArchiveDir: filepath.Join(baseDir, "archive"),

		NotionToken:     values["NOTION_TOKEN"],
		AudioLinkPrefix: values["AUDIO_LINK_PREFIX"],
		StorageBucket:   values["STORAGE_BUCKET"],
		StorageProfile:  profile,

		StorageURL:      profileValues["STORAGE_URL"],
		StorageKey:      profileValues["STORAGE_KEY"],
		TranscribeURL:   profileValues["TRANSCRIBE_URL"],
		TranscribeToken: profileValues["TRANSCRIBE_TOKEN"],

		PollInterval:   defaultPollInterval,
		PollTimeout:    defaultPollTimeout,
		GapThreshold:   defaultGapThreshold,
		TimestampEvery: defaultTimestampEvery,
	}

	if err := applyTunables(cfg, values); err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.IngressDir, cfg.ArchiveDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errors.NewConfiguration(fmt.Sprintf("create %s: %v", dir, err))
		}
	}

	return cfg, nil
}

// applyTunables overrides pipeline defaults from optional secrets keys.
func applyTunables(cfg *Config, values map[string]string) error {
	if v := values["POLL_INTERVAL"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.NewConfiguration(fmt.Sprintf("POLL_INTERVAL %q: %v", v, err))
		}
		cfg.PollInterval = d
	}
	if v := values["POLL_TIMEOUT"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.NewConfiguration(fmt.Sprintf("POLL_TIMEOUT %q: %v", v, err))
		}
		cfg.PollTimeout = d
	}
	if v := values["GAP_THRESHOLD_SECONDS"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return errors.NewConfiguration(fmt.Sprintf("GAP_THRESHOLD_SECONDS %q must be a positive number", v))
		}
		cfg.GapThreshold = f
	}
	if v := values["TIMESTAMP_EVERY_SECONDS"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return errors.NewConfiguration(fmt.Sprintf("TIMESTAMP_EVERY_SECONDS %q must be a non-negative number", v))
		}
		cfg.TimestampEvery = f
	}
	return nil
}

// readEnvDir parses every file matching pattern in dir, later files
// overriding earlier ones. Files are visited in name order so overrides
// are deterministic.
func readEnvDir(dir, pattern string) (map[string]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.NewConfiguration(fmt.Sprintf("scan %s: %v", dir, err))
	}
	if len(matches) == 0 {
		return nil, errors.NewConfiguration(
			fmt.Sprintf("no %s files found in %s", pattern, dir))
	}
	sort.Strings(matches)

	values := make(map[string]string)
	for _, path := range matches {
		fileValues, err := readEnvFile(path)
		if err != nil {
			return nil, errors.NewConfiguration(fmt.Sprintf("read %s: %v", path, err))
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	return values, nil
}

// readEnvFile parses one key=value file. Blank lines and #-comments are
// skipped, an optional "export " prefix is tolerated, and single or double
// quotes around values are stripped. Values may contain '='.
func readEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}
		if key != "" {
			values[key] = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
