package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"lingua-voice/internal/cachekey"
	"lingua-voice/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore_Defaults(t *testing.T) {
	s := NewFileStore("", "")
	assert.Equal(t, "docs/audio", s.Dir)
	assert.Equal(t, "mp3", s.Ext)
}

func TestFileStore_SaveAndExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	s := NewFileStore(dir, "mp3")
	key := cachekey.Derive("I want to sleep.")

	exists, err := s.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	path, err := s.Save(key, []byte("audio"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, key+".mp3"), path)

	exists, err = s.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)

	// временные файлы не остаются
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ExistsIgnoresContent(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "mp3")
	require.NoError(t, os.WriteFile(s.Path("abc"), nil, 0o644))

	exists, err := s.Exists("abc")
	require.NoError(t, err)
	assert.True(t, exists, "пустой файл тоже считается попаданием в кэш")
}

func TestWriteMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio", "audio_mapping.json")
	units := []models.TextUnit{
		{Text: "I'm going to eat.", GroupID: "1", SubGroupID: "1"},
		{Text: "I want to sleep.", GroupID: "1", SubGroupID: "2"},
		{Text: "I want to sleep.", GroupID: "2", SubGroupID: "5"},
	}

	mapping, err := WriteMapping(path, units, "mp3")
	require.NoError(t, err)
	assert.Len(t, mapping, 2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"")
	assert.Contains(t, string(raw), "I'm going to eat.")

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, cachekey.Filename("I'm going to eat.", "mp3"), decoded["I'm going to eat."])
	assert.Equal(t, cachekey.Filename("I want to sleep.", "mp3"), decoded["I want to sleep."])
}

func TestWriteMapping_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio_mapping.json")

	_, err := WriteMapping(path, []models.TextUnit{{Text: "a"}, {Text: "b"}}, "mp3")
	require.NoError(t, err)
	_, err = WriteMapping(path, []models.TextUnit{{Text: "c"}}, "mp3")
	require.NoError(t, err)

	var decoded map[string]string
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, map[string]string{"c": cachekey.Filename("c", "mp3")}, decoded)
}

func TestWriteMapping_NonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio_mapping.json")
	_, err := WriteMapping(path, []models.TextUnit{{Text: "<b>안녕</b> & hi"}}, "mp3")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<b>안녕</b> & hi")
}

func TestDefaultMappingPath(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "audio", "audio_mapping.json"), DefaultMappingPath(filepath.Join("docs", "audio")))
}
