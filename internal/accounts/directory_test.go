package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Directory {
	t.Helper()
	dir, err := Open(filepath.Join(t.TempDir(), "linked_users.json"))
	require.NoError(t, err)
	return dir
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	dir := openTemp(t)
	assert.Equal(t, 0, dir.Len())
	assert.Empty(t, dir.All())
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestOpen_NullStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0644))

	dir, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, dir.Len())

	acc, err := dir.Link("1", "steam", "Zen")
	require.NoError(t, err)
	assert.Equal(t, LinkedAccount{OwnerID: "1", Platform: Steam, Username: "Zen"}, acc)
}

func TestOpen_SkipsUnusableRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	seed := `{
  "1": null,
  "2": {"platform": "switch", "username": "Joyride"},
  "3": {"platform": "epic", "username": "  "},
  "4": {"platform": " PSN ", "username": "Rise"}
}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0644))

	dir, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []LinkedAccount{{OwnerID: "4", Platform: PSN, Username: "Rise"}}, dir.All())
}

func TestLink_ThenGet(t *testing.T) {
	for _, p := range Platforms {
		t.Run(string(p), func(t *testing.T) {
			dir := openTemp(t)

			acc, err := dir.Link("42", string(p), "Squishy")
			require.NoError(t, err)
			assert.Equal(t, LinkedAccount{OwnerID: "42", Platform: p, Username: "Squishy"}, acc)

			got, ok := dir.Get("42")
			require.True(t, ok)
			assert.Equal(t, p, got.Platform)
			assert.Equal(t, "Squishy", got.Username)
		})
	}
}

func TestLink_NormalisesPlatform(t *testing.T) {
	dir := openTemp(t)

	acc, err := dir.Link("1", "  XBL ", "GarrettG")
	require.NoError(t, err)
	assert.Equal(t, XBL, acc.Platform)
}

func TestLink_Overwrites(t *testing.T) {
	dir := openTemp(t)

	_, err := dir.Link("1", "steam", "old")
	require.NoError(t, err)
	_, err = dir.Link("1", "epic", "new")
	require.NoError(t, err)

	got, ok := dir.Get("1")
	require.True(t, ok)
	assert.Equal(t, Epic, got.Platform)
	assert.Equal(t, "new", got.Username)
	assert.Equal(t, 1, dir.Len())
}

func TestLink_InvalidInput(t *testing.T) {
	dir := openTemp(t)

	_, err := dir.Link("1", "switch", "Jstn")
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	_, err = dir.Link("1", "steam", "   ")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, ok := dir.Get("1")
	assert.False(t, ok)
}

func TestUnlink(t *testing.T) {
	dir := openTemp(t)

	_, err := dir.Link("7", "psn", "Kaydop")
	require.NoError(t, err)

	removed, err := dir.Unlink("7")
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok := dir.Get("7")
	assert.False(t, ok)

	removed, err = dir.Unlink("7")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestChangePlatform_NotLinked(t *testing.T) {
	dir := openTemp(t)

	_, err := dir.ChangePlatform("ghost", "epic")
	assert.ErrorIs(t, err, ErrNotLinked)

	_, ok := dir.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, dir.Len())
}

func TestChangePlatform_InvalidLeavesRecord(t *testing.T) {
	dir := openTemp(t)

	_, err := dir.Link("1", "steam", "Turbopolsa")
	require.NoError(t, err)

	_, err = dir.ChangePlatform("1", "stadia")
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	got, _ := dir.Get("1")
	assert.Equal(t, Steam, got.Platform)
	assert.Equal(t, "Turbopolsa", got.Username)
}

func TestChangePlatform_Updates(t *testing.T) {
	dir := openTemp(t)

	_, err := dir.Link("1", "steam", "Turbopolsa")
	require.NoError(t, err)

	acc, err := dir.ChangePlatform("1", "epic")
	require.NoError(t, err)
	assert.Equal(t, Epic, acc.Platform)
	assert.Equal(t, "Turbopolsa", acc.Username)
}

func TestAll_InsertionOrder(t *testing.T) {
	dir := openTemp(t)

	for _, id := range []string{"c", "a", "b"} {
		_, err := dir.Link(id, "steam", "user-"+id)
		require.NoError(t, err)
	}
	_, err := dir.Unlink("a")
	require.NoError(t, err)

	var ids []string
	for _, acc := range dir.All() {
		ids = append(ids, acc.OwnerID)
	}
	assert.Equal(t, []string{"c", "b"}, ids)
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	dir, err := Open(path)
	require.NoError(t, err)

	want := map[string]LinkedAccount{}
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("owner-%d", 9-i)
		p := Platforms[i%len(Platforms)]
		acc, err := dir.Link(id, string(p), fmt.Sprintf("player%d", i))
		require.NoError(t, err)
		want[id] = acc
	}

	reloaded, err := Open(path)
	require.NoError(t, err)

	got := map[string]LinkedAccount{}
	for _, acc := range reloaded.All() {
		got[acc.OwnerID] = acc
	}
	assert.Equal(t, want, got)
}

func TestStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	dir, err := Open(path)
	require.NoError(t, err)

	_, err = dir.Link("123", "epic", "Zen")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string]string{
		"123": {"platform": "epic", "username": "Zen"},
	}, raw)
}

func TestStore_PreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	seed := `{"1": {"platform": "steam", "username": "Vatira", "linked_at": "2024-01-01", "notes": {"team": "KC"}}}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0644))

	dir, err := Open(path)
	require.NoError(t, err)

	_, err = dir.ChangePlatform("1", "epic")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "epic", raw["1"]["platform"])
	assert.Equal(t, "Vatira", raw["1"]["username"])
	assert.Equal(t, "2024-01-01", raw["1"]["linked_at"])
	assert.Equal(t, map[string]any{"team": "KC"}, raw["1"]["notes"])
}

func TestFlushFailure_RollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	dir, err := Open(path)
	require.NoError(t, err)

	// a non-empty directory at the store path makes the final rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0755))

	_, err = dir.Link("1", "steam", "Firstkiller")
	assert.ErrorIs(t, err, ErrPersistence)

	_, ok := dir.Get("1")
	assert.False(t, ok)
	assert.Empty(t, dir.All())
}

func TestChangePlatform_ConcurrentWritesSerialised(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked_users.json")
	dir, err := Open(path)
	require.NoError(t, err)

	_, err = dir.Link("1", "steam", "M0nkey M00n")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		p := "epic"
		if i%2 == 0 {
			p = "xbl"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dir.ChangePlatform("1", p)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	inMemory, _ := dir.Get("1")

	reloaded, err := Open(path)
	require.NoError(t, err)
	onDisk, ok := reloaded.Get("1")
	require.True(t, ok)

	assert.Contains(t, []Platform{Epic, XBL}, onDisk.Platform)
	assert.Equal(t, inMemory.Platform, onDisk.Platform)
}
