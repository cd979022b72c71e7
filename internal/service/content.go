package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ContentSource supplies the study material questions are generated from. The
// sync job that populates it is an external collaborator; an empty result is
// valid, it just means nothing has been synced yet.
type ContentSource interface {
	ListTopics(ctx context.Context) ([]string, error)
	// ContentForTopic maps filename to file text for one topic
	ContentForTopic(ctx context.Context, topic string) (map[string]string, error)
}

// fsContentSource reads a synced content checkout from disk: one directory
// per topic, markdown or text files inside.
type fsContentSource struct {
	root string
}

// NewFSContentSource creates a filesystem-backed content source
func NewFSContentSource(root string) ContentSource {
	return &fsContentSource{root: root}
}

func (s *fsContentSource) ListTopics(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			topics = append(topics, e.Name())
		}
	}
	sort.Strings(topics)
	return topics, nil
}

func (s *fsContentSource) ContentForTopic(_ context.Context, topic string) (map[string]string, error) {
	dir := filepath.Join(s.root, topic)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	content := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		content[e.Name()] = string(data)
	}
	return content, nil
}
