package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

type upMigration struct {
	name    string
	version uint
}

// upMigrations lists the embedded .up.sql files ordered by version.
func upMigrations() ([]upMigration, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var out []upMigration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename: %s", name)
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil || version == 0 {
			return nil, fmt.Errorf("invalid migration filename: %s", name)
		}
		out = append(out, upMigration{name: name, version: uint(version)})
	}
	if len(out) == 0 {
		return nil, errors.New("no embedded migrations found")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func LatestMigrationVersion() (uint, error) {
	ups, err := upMigrations()
	if err != nil {
		return 0, err
	}
	return ups[len(ups)-1].version, nil
}

// MigrationsChecksum digests the names and contents of every up migration.
func MigrationsChecksum() (string, error) {
	ups, err := upMigrations()
	if err != nil {
		return "", err
	}

	hasher := sha256.New()
	for _, m := range ups {
		content, err := embeddedMigrations.ReadFile(path.Join(migrationsDir, m.name))
		if err != nil {
			return "", fmt.Errorf("read migration %s: %w", m.name, err)
		}
		_, _ = hasher.Write([]byte(m.name))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(content)
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
