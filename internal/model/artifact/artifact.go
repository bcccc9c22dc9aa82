// Package artifact persists model bundles as a directory of snappy-compressed
// JSON files plus a manifest carrying a SHA-256 digest for each file.
//
// Layout under the artifact root:
//
//	CURRENT                     run ID of the bundle to serve
//	<run-id>/manifest.json
//	<run-id>/model.json.sz
//	<run-id>/industry_vocab.json.sz
//	<run-id>/region_vocab.json.sz
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/railzwaylabs/riskscore/internal/classifier"
	"github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/vocabulary"
)

const (
	FormatVersion = 1

	ManifestFile      = "manifest.json"
	ModelFile         = "model.json.sz"
	IndustryVocabFile = "industry_vocab.json.sz"
	RegionVocabFile   = "region_vocab.json.sz"
	CurrentFile       = "CURRENT"
)

type Manifest struct {
	RunID         string            `json:"run_id"`
	FormatVersion int               `json:"format_version"`
	TrainedAt     time.Time         `json:"trained_at"`
	FeatureNames  []string          `json:"feature_names"`
	Files         map[string]string `json:"files"`
}

type modelPayload struct {
	RunID        string             `json:"run_id"`
	FeatureNames []string           `json:"feature_names"`
	Forest       *classifier.Forest `json:"forest"`
}

type vocabPayload struct {
	RunID      string              `json:"run_id"`
	Vocabulary vocabulary.Snapshot `json:"vocabulary"`
}

// Save writes the bundle into root/<run-id> and returns the directory and
// the manifest checksum. It does not move the CURRENT pointer.
func Save(root string, b *domain.Bundle) (string, string, error) {
	if b.RunID == "" {
		return "", "", fmt.Errorf("%w: bundle has no run id", domain.ErrModelVersionMismatch)
	}

	dir := filepath.Join(root, b.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create artifact dir: %w", err)
	}

	payloads := []struct {
		name string
		v    any
	}{
		{ModelFile, modelPayload{RunID: b.RunID, FeatureNames: b.FeatureNames, Forest: b.Forest}},
		{IndustryVocabFile, vocabPayload{RunID: b.RunID, Vocabulary: b.Industry.Snapshot()}},
		{RegionVocabFile, vocabPayload{RunID: b.RunID, Vocabulary: b.Region.Snapshot()}},
	}

	manifest := Manifest{
		RunID:         b.RunID,
		FormatVersion: FormatVersion,
		TrainedAt:     b.TrainedAt.UTC(),
		FeatureNames:  b.FeatureNames,
		Files:         make(map[string]string, len(payloads)),
	}
	for _, p := range payloads {
		raw, err := json.Marshal(p.v)
		if err != nil {
			return "", "", fmt.Errorf("encode %s: %w", p.name, err)
		}
		data := snappy.Encode(nil, raw)
		if err := writeFileAtomic(filepath.Join(dir, p.name), data); err != nil {
			return "", "", err
		}
		manifest.Files[p.name] = calculateChecksum(data)
	}

	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, ManifestFile), raw); err != nil {
		return "", "", err
	}
	return dir, calculateChecksum(raw), nil
}

// Load reads and verifies the bundle in dir. Every file must match its
// manifest digest and carry the manifest's run ID.
func Load(dir string) (*domain.Bundle, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoModel, dir)
		}
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", domain.ErrModelVersionMismatch, manifest.FormatVersion, FormatVersion)
	}
	if !slices.Equal(manifest.FeatureNames, domain.FeatureNames) {
		return nil, fmt.Errorf("%w: feature names %v", domain.ErrModelVersionMismatch, manifest.FeatureNames)
	}

	var model modelPayload
	if err := readPayload(dir, ModelFile, manifest, &model); err != nil {
		return nil, err
	}
	var industry, region vocabPayload
	if err := readPayload(dir, IndustryVocabFile, manifest, &industry); err != nil {
		return nil, err
	}
	if err := readPayload(dir, RegionVocabFile, manifest, &region); err != nil {
		return nil, err
	}

	for _, f := range []struct{ name, runID string }{
		{ModelFile, model.RunID},
		{IndustryVocabFile, industry.RunID},
		{RegionVocabFile, region.RunID},
	} {
		if f.runID != manifest.RunID {
			return nil, fmt.Errorf("%w: %s belongs to run %q, manifest is %q", domain.ErrModelVersionMismatch, f.name, f.runID, manifest.RunID)
		}
	}
	if !slices.Equal(model.FeatureNames, manifest.FeatureNames) {
		return nil, fmt.Errorf("%w: model feature names %v", domain.ErrModelVersionMismatch, model.FeatureNames)
	}
	if model.Forest == nil {
		return nil, fmt.Errorf("%w: model has no forest", domain.ErrModelVersionMismatch)
	}
	if err := model.Forest.Validate(); err != nil {
		return nil, err
	}
	if model.Forest.NumFeatures != len(manifest.FeatureNames) {
		return nil, fmt.Errorf("%w: forest expects %d features", domain.ErrModelVersionMismatch, model.Forest.NumFeatures)
	}

	industryVocab, err := vocabulary.Restore(industry.Vocabulary)
	if err != nil {
		return nil, err
	}
	regionVocab, err := vocabulary.Restore(region.Vocabulary)
	if err != nil {
		return nil, err
	}

	return &domain.Bundle{
		RunID:        manifest.RunID,
		TrainedAt:    manifest.TrainedAt,
		FeatureNames: manifest.FeatureNames,
		Forest:       model.Forest,
		Industry:     industryVocab,
		Region:       regionVocab,
	}, nil
}

func readPayload(dir, name string, manifest Manifest, v any) error {
	want, ok := manifest.Files[name]
	if !ok {
		return fmt.Errorf("%w: %s missing from manifest", domain.ErrModelVersionMismatch, name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if got := calculateChecksum(data); got != want {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, name)
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// SetCurrent points root/CURRENT at runID.
func SetCurrent(root, runID string) error {
	return writeFileAtomic(filepath.Join(root, CurrentFile), []byte(runID+"\n"))
}

func Current(root string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(root, CurrentFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no %s in %s", domain.ErrNoModel, CurrentFile, root)
		}
		return "", err
	}
	runID := strings.TrimSpace(string(raw))
	if runID == "" {
		return "", fmt.Errorf("%w: empty %s", domain.ErrNoModel, CurrentFile)
	}
	return runID, nil
}

func LoadCurrent(root string) (*domain.Bundle, error) {
	runID, err := Current(root)
	if err != nil {
		return nil, err
	}
	b, err := Load(filepath.Join(root, runID))
	if err != nil {
		return nil, err
	}
	if b.RunID != runID {
		return nil, fmt.Errorf("%w: %s names %q, bundle is %q", domain.ErrModelVersionMismatch, CurrentFile, runID, b.RunID)
	}
	return b, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
