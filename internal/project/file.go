package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

// fileRecord accepts every historical shape of a project entry: the bare
// {name, time_spent} form and the form extended with timestamps.
type fileRecord struct {
	Name        *string      `json:"name"`
	TimeSpent   *json.Number `json:"time_spent"`
	CreatedAt   *string      `json:"created_at"`
	LastTracked *string      `json:"last_tracked"`
}

// ReadFile reads a backing file. A missing or empty file yields an empty
// list. Content that cannot be decoded yields an empty list and an error
// matching ErrParse; any other read failure matches ErrIO.
func ReadFile(path string) ([]Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Project{}, nil
		}
		return nil, ioError("load", "", err)
	}

	projects, err := Decode(data)
	if err != nil {
		return []Project{}, parseError("load", err)
	}
	return projects, nil
}

// WriteFile replaces the backing file with the given list.
func WriteFile(path string, projects []Project) error {
	if err := writeProjects(path, projects); err != nil {
		return ioError("save", "", err)
	}
	return nil
}

func writeProjects(path string, projects []Project) error {
	data, err := Encode(projects)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

// Decode parses the backing-file document, filling absent optional fields
// with their sentinels.
func Decode(data []byte) ([]Project, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Project{}, nil
	}

	var raw []fileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(raw))
	for i, r := range raw {
		if r.Name == nil {
			return nil, fmt.Errorf("entry %d: missing name", i)
		}
		p := Project{
			Name:        *r.Name,
			CreatedAt:   UnknownCreated,
			LastTracked: NeverTracked,
		}
		if r.TimeSpent != nil {
			secs, err := wholeSeconds(*r.TimeSpent)
			if err != nil {
				return nil, fmt.Errorf("entry %d (%s): time_spent: %w", i, p.Name, err)
			}
			p.TimeSpent = secs
		}
		if r.CreatedAt != nil && *r.CreatedAt != "" {
			p.CreatedAt = *r.CreatedAt
		}
		if r.LastTracked != nil && *r.LastTracked != "" {
			p.LastTracked = *r.LastTracked
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Encode renders the list in the backing-file format.
func Encode(projects []Project) ([]byte, error) {
	if projects == nil {
		projects = []Project{}
	}
	data, err := json.MarshalIndent(projects, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func wholeSeconds(n json.Number) (int64, error) {
	secs, err := n.Int64()
	if err != nil {
		// Older files may carry integral floats such as 120.0.
		f, ferr := n.Float64()
		if ferr != nil || f != math.Trunc(f) || f >= math.MaxInt64 {
			return 0, fmt.Errorf("not a whole number of seconds: %s", n)
		}
		secs = int64(f)
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative value %d", secs)
	}
	return secs, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
