package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/spigell/mentor-matcher/internal/matching"
)

// ErrUnsupportedFormat is returned for pool files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported pool file format")

// profileNamespace seeds stable IDs for records that come without one.
var profileNamespace = uuid.MustParse("6f1b8f3e-4a55-4c59-9a57-0f7c2d8e1a90")

// Source supplies candidate pool snapshots.
type Source interface {
	Load(ctx context.Context) (*Candidates, error)
}

// FileSource reads a pool from a JSON or YAML file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: strings.TrimSpace(path)}
}

func (s *FileSource) Load(ctx context.Context) (*Candidates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return nil, errors.New("pool file path is not configured")
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading pool file %q: %w", s.Path, err)
	}

	candidates, err := Decode(data, filepath.Ext(s.Path))
	if err != nil {
		return nil, fmt.Errorf("decoding pool file %q: %w", s.Path, err)
	}
	return candidates, nil
}

// Decode parses a pool document. format is a file extension (".json",
// ".yaml", ".yml"); both a bare list and an {"items": [...]} object are
// accepted. Records without an ID get a stable one.
func Decode(data []byte, format string) (*Candidates, error) {
	var (
		candidates Candidates
		err        error
	)

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		err = decodeJSON(data, &candidates)
	case "yaml", "yml":
		err = decodeYAML(data, &candidates)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	AssignStableIDs(&candidates)
	return &candidates, nil
}

func decodeJSON(data []byte, out *Candidates) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &out.Items)
	}
	return json.Unmarshal(trimmed, out)
}

func decodeYAML(data []byte, out *Candidates) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		return root.Decode(&out.Items)
	case yaml.MappingNode:
		return root.Decode(out)
	default:
		return fmt.Errorf("expected a list or a mapping at line %d", root.Line)
	}
}

// AssignStableIDs fills empty IDs with a UUIDv5 derived from the profile's
// name, field of study and graduation year.
func AssignStableIDs(c *Candidates) {
	for i := range c.Items {
		item := &c.Items[i]
		if strings.TrimSpace(item.ID) != "" {
			continue
		}
		key := strings.Join([]string{
			strings.ToLower(strings.TrimSpace(item.Name)),
			strings.ToLower(strings.TrimSpace(item.FieldOfStudy)),
			strconv.Itoa(item.GraduationYear),
		}, "|")
		item.ID = uuid.NewSHA1(profileNamespace, []byte(key)).String()
	}
}

// StaticSource serves a fixed in-memory pool.
type StaticSource struct {
	Candidates []matching.CandidateProfile
}

func (s *StaticSource) Load(context.Context) (*Candidates, error) {
	c := &Candidates{Items: append([]matching.CandidateProfile(nil), s.Candidates...)}
	AssignStableIDs(c)
	return c, nil
}
