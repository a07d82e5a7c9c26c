package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SequentialRotator is an io.Writer that rotates the log file once it grows
// past maxSize, renaming old files with an increasing sequence number.
type SequentialRotator struct {
	filename   string
	maxSize    int64 // bytes
	maxAge     int   // days
	maxBackups int
	mu         sync.Mutex
	file       *os.File
	size       int64
}

func NewSequentialRotator(filename string, maxSizeMB, maxAge, maxBackups int) *SequentialRotator {
	return &SequentialRotator{
		filename:   filename,
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		maxAge:     maxAge,
		maxBackups: maxBackups,
	}
}

// Write implements io.Writer
func (r *SequentialRotator) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.openFile(); err != nil {
			return 0, err
		}
	}

	if r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close closes the current log file
func (r *SequentialRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

func (r *SequentialRotator) openFile() error {
	if err := os.MkdirAll(filepath.Dir(r.filename), 0755); err != nil {
		return err
	}

	if info, err := os.Stat(r.filename); err == nil {
		r.size = info.Size()
	} else {
		r.size = 0
	}

	file, err := os.OpenFile(r.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	r.file = file
	return nil
}

func (r *SequentialRotator) rotate() error {
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			return err
		}
		r.file = nil
	}

	base := strings.TrimSuffix(r.filename, ".log")
	rotatedName := fmt.Sprintf("%s.%d.log", base, r.nextSequenceNumber())
	if err := os.Rename(r.filename, rotatedName); err != nil {
		return err
	}

	r.cleanupOldFiles()

	r.size = 0
	return r.openFile()
}

func (r *SequentialRotator) nextSequenceNumber() int {
	maxSeq := 0
	for _, file := range r.rotatedFiles() {
		if seq, ok := sequenceOf(file); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

func (r *SequentialRotator) rotatedFiles() []string {
	dir := filepath.Dir(r.filename)
	base := strings.TrimSuffix(filepath.Base(r.filename), ".log")
	files, err := filepath.Glob(filepath.Join(dir, base+".*.log"))
	if err != nil {
		return nil
	}
	return files
}

// sequenceOf extracts N from a rotated name like "service.N.log".
func sequenceOf(path string) (int, bool) {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) < 3 {
		return 0, false
	}
	seq, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, false
	}
	return seq, true
}

// cleanupOldFiles removes rotated files beyond maxBackups or older than maxAge.
func (r *SequentialRotator) cleanupOldFiles() {
	type rotated struct {
		path    string
		modTime time.Time
		seq     int
	}

	var files []rotated
	for _, file := range r.rotatedFiles() {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		seq, _ := sequenceOf(file)
		files = append(files, rotated{path: file, modTime: info.ModTime(), seq: seq})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].seq > files[j].seq
	})

	if r.maxBackups > 0 && len(files) > r.maxBackups {
		for _, f := range files[r.maxBackups:] {
			_ = os.Remove(f.path)
		}
		files = files[:r.maxBackups]
	}

	if r.maxAge > 0 {
		cutoff := time.Now().AddDate(0, 0, -r.maxAge)
		for _, f := range files {
			if f.modTime.Before(cutoff) {
				_ = os.Remove(f.path)
			}
		}
	}
}
