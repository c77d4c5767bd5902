/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

const (
	// StateDirName holds per-script state next to the script file.
	StateDirName   = ".gpp"
	BackupsDirName = "backups"

	backupExt   = ".xz"
	autosaveTag = "crash"
	stampLayout = "20060102-150405.000000000"
)

// ErrEmptyPath is returned when no script path was given.
var ErrEmptyPath = errors.New("script path is required")

// StateDir returns the .gpp directory that belongs to scriptPath.
func StateDir(scriptPath string) string {
	return filepath.Join(filepath.Dir(scriptPath), StateDirName)
}

// BackupsDir returns the directory holding compressed script backups.
func BackupsDir(scriptPath string) string {
	return filepath.Join(StateDir(scriptPath), BackupsDirName)
}

// ReadScript loads the script text at path.
func ReadScript(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

// WriteScript replaces the script at path with text using a temp file and a
// rename. Existing content is first kept as an xz-compressed timestamped
// backup; only the newest keep backups survive (keep <= 0 keeps all).
func WriteScript(path, text string, keep int) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if cur, err := os.ReadFile(path); err == nil {
		if string(cur) == text {
			return nil
		}
		if _, err := writeBackup(path, cur, ""); err != nil {
			return fmt.Errorf("backup current script: %w", err)
		}
		if keep > 0 {
			if err := pruneBackups(path, keep); err != nil {
				return fmt.Errorf("prune backups: %w", err)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read current script: %w", err)
	}

	// Transactional write: to temp file in same directory, then rename over target
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, []byte(text)); err != nil {
		return fmt.Errorf("write temp script: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace script: %w", err)
	}
	return nil
}

// AutosaveCrashSnapshot stores text as a crash autosave next to the regular
// backups and returns its path. It never touches the script itself.
func AutosaveCrashSnapshot(scriptPath, text string) (string, error) {
	if strings.TrimSpace(scriptPath) == "" {
		return "", ErrEmptyPath
	}
	return writeBackup(scriptPath, []byte(text), autosaveTag)
}

// Backup is one compressed copy of a script.
type Backup struct {
	Path     string
	Time     time.Time
	Size     int64
	Autosave bool
}

// ListBackups returns the backups of scriptPath, newest first.
func ListBackups(scriptPath string) ([]Backup, error) {
	dir := BackupsDir(scriptPath)
	ents, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(scriptPath) + "."
	var out []Backup
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), backupExt)
		b := Backup{Path: filepath.Join(dir, name)}
		if s, ok := strings.CutSuffix(stamp, "."+autosaveTag); ok {
			stamp = s
			b.Autosave = true
		}
		ts, err := time.ParseInLocation(stampLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		b.Time = ts
		if info, err := e.Info(); err == nil {
			b.Size = info.Size()
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

// LatestBackup returns the newest regular backup of scriptPath.
func LatestBackup(scriptPath string) (Backup, error) {
	all, err := ListBackups(scriptPath)
	if err != nil {
		return Backup{}, err
	}
	for _, b := range all {
		if !b.Autosave {
			return b, nil
		}
	}
	return Backup{}, errors.New("no backups found")
}

// ReadBackup decompresses the backup at path.
func ReadBackup(path string) (text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open backup: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	xr, err := xz.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("create xz reader: %w", err)
	}
	b, err := io.ReadAll(xr)
	if err != nil {
		return "", fmt.Errorf("decompress backup: %w", err)
	}
	return string(b), nil
}

func writeBackup(scriptPath string, data []byte, tag string) (string, error) {
	dir := BackupsDir(scriptPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	name := filepath.Base(scriptPath) + "." + time.Now().Format(stampLayout)
	if tag != "" {
		name += "." + tag
	}
	path := filepath.Join(dir, name+backupExt)

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("create xz writer: %w", err)
	}
	if _, err := xw.Write(data); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := xw.Close(); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := writeFileSync(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// pruneBackups removes regular backups beyond the newest keep.
func pruneBackups(scriptPath string, keep int) error {
	all, err := ListBackups(scriptPath)
	if err != nil {
		return err
	}
	n := 0
	for _, b := range all {
		if b.Autosave {
			continue
		}
		n++
		if n > keep {
			if err := os.Remove(b.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}
