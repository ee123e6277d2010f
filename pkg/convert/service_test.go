package convert

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsbingo17/tms-migrate/pkg/attachment"
	"github.com/gsbingo17/tms-migrate/pkg/codec"
	"github.com/gsbingo17/tms-migrate/pkg/logger"
	"github.com/gsbingo17/tms-migrate/pkg/storage"
)

func newTestService(store storage.Store) *Service {
	log := logger.New()
	log.SetLevel("error")
	return NewService(codec.New(4096, 0, log), store, log)
}

func storedEnvelope(t *testing.T, store storage.Store, ownerID, id string) (attachment.Attachment, map[string]interface{}) {
	t.Helper()
	att, found, err := store.Get(context.Background(), ownerID, id)
	require.NoError(t, err)
	require.True(t, found)

	payload, err := att.Decoded()
	require.NoError(t, err)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &env))
	return att, env
}

func TestConvertZephyrEnvelope(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestService(store)

	envelope := `{"content":"Given a user\nWhen they log in","metadata":{"testCaseKey":"ZEPH-TEST-456","testCaseName":"Login Test","projectKey":"ZEPH"}}`
	src := attachment.New("TC-1", "steps.txt", "text/plain", []byte(envelope))
	require.NoError(t, store.Put(context.Background(), "TC-1", src))

	newID, err := s.Convert(context.Background(), "TC-1", src.ID, ProcessingOptions{
		SourceProvider: "zephyr",
		TargetProvider: "qtest",
		Format:         codec.FormatXML,
	})
	require.NoError(t, err)
	require.NotEmpty(t, newID)
	assert.NotEqual(t, src.ID, newID, "conversion must produce a fresh id")

	out, env := storedEnvelope(t, store, "TC-1", newID)

	assert.Equal(t, "Zephyr", env["convertedFrom"])
	assert.NotEmpty(t, env["convertedAt"])

	identity, ok := env["test-case"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ZEPH-TEST-456", identity["id"])
	assert.Equal(t, "Login Test", identity["name"])

	// Unmapped metadata keys survive verbatim under originalMetadata.
	original, ok := env["originalMetadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ZEPH", original["projectKey"])
	assert.Equal(t, "ZEPH-TEST-456", original["testCaseKey"])

	assert.Equal(t, "<content>Given a user\nWhen they log in</content>", env["content"])

	// Output naming and the size invariant.
	assert.Equal(t, "steps_processed.xml", out.FileName)
	assert.Equal(t, "application/xml", out.ContentType)
	payload, err := out.Decoded()
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), out.Size)

	// The original is never mutated or deleted.
	kept, found, err := store.Get(context.Background(), "TC-1", src.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, src.Data, kept.Data)
}

func TestConvertRawPayloadWithoutEnvelope(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestService(store)

	src := attachment.New("TC-2", "notes.txt", "text/plain", []byte("plain notes"))
	require.NoError(t, store.Put(context.Background(), "TC-2", src))

	newID, err := s.Convert(context.Background(), "TC-2", src.ID, ProcessingOptions{
		SourceProvider: "testrail",
		TargetProvider: "qtest",
		Format:         codec.FormatMarkdown,
	})
	require.NoError(t, err)

	_, env := storedEnvelope(t, store, "TC-2", newID)
	assert.Equal(t, "TestRail", env["convertedFrom"])
	assert.Equal(t, "# Content\n\nplain notes", env["content"])

	original, ok := env["originalMetadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Empty(t, original, "payloads without an envelope carry empty metadata")
}

func TestConvertCorruptBase64IsFatal(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestService(store)

	bad := attachment.Attachment{
		ID:          "bad-1",
		OwnerID:     "TC-3",
		FileName:    "broken.bin",
		ContentType: "application/octet-stream",
		Data:        "%%% not base64 %%%",
	}
	require.NoError(t, store.Put(context.Background(), "TC-3", bad))

	_, err := s.Convert(context.Background(), "TC-3", "bad-1", ProcessingOptions{
		SourceProvider: "zephyr",
		TargetProvider: "qtest",
	})
	assert.Error(t, err)
}

func TestConvertMissingAttachment(t *testing.T) {
	s := newTestService(storage.NewMemoryStore())
	_, err := s.Convert(context.Background(), "TC-4", "nope", ProcessingOptions{})
	assert.Error(t, err)
}

func TestConvertSkippedImageKeepsOriginal(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestService(store)

	src := attachment.New("TC-5", "shot.png", "image/png", []byte("\x89PNG\r\n\x1a\nimagedata"))
	require.NoError(t, store.Put(context.Background(), "TC-5", src))

	id, err := s.Convert(context.Background(), "TC-5", src.ID, ProcessingOptions{
		SourceProvider: "zephyr",
		TargetProvider: "qtest",
		Format:         codec.FormatXML,
		ExportImages:   false,
	})
	require.NoError(t, err)
	assert.Equal(t, src.ID, id, "a skipped image stands unchanged")
	assert.Equal(t, 1, store.Len("TC-5"), "no new attachment is written")
}

func TestConvertBinaryContentIsBase64Wrapped(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestService(store)

	binary := []byte{0x00, 0xFF, 0xFE, 0x01, 0x80}
	src := attachment.New("TC-6", "blob.bin", "application/octet-stream", binary)
	require.NoError(t, store.Put(context.Background(), "TC-6", src))

	newID, err := s.Convert(context.Background(), "TC-6", src.ID, ProcessingOptions{
		SourceProvider: "jira",
		TargetProvider: "qtest",
	})
	require.NoError(t, err)

	_, env := storedEnvelope(t, store, "TC-6", newID)
	assert.Equal(t, "base64", env["contentEncoding"])

	decoded, err := base64.StdEncoding.DecodeString(env["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, binary, decoded)
}

func TestConvertCompactsJSONUnlessPreserving(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestService(store)

	pretty := "{\n  \"a\": 1\n}"
	envelope, err := json.Marshal(map[string]interface{}{"content": pretty, "metadata": map[string]interface{}{}})
	require.NoError(t, err)

	src := attachment.New("TC-7", "data.json", "application/json", envelope)
	require.NoError(t, store.Put(context.Background(), "TC-7", src))

	newID, err := s.Convert(context.Background(), "TC-7", src.ID, ProcessingOptions{
		SourceProvider: "jira",
		TargetProvider: "qtest",
		Format:         codec.FormatJSON,
	})
	require.NoError(t, err)
	_, env := storedEnvelope(t, store, "TC-7", newID)
	assert.Equal(t, `{"a":1}`, env["content"])

	// preserveFormatting retains the original indentation.
	preservedID, err := s.Convert(context.Background(), "TC-7", src.ID, ProcessingOptions{
		SourceProvider:     "jira",
		TargetProvider:     "qtest",
		Format:             codec.FormatJSON,
		PreserveFormatting: true,
	})
	require.NoError(t, err)
	_, env = storedEnvelope(t, store, "TC-7", preservedID)
	assert.Equal(t, pretty, env["content"])
}

func TestLookupProviderFallsBackGenerically(t *testing.T) {
	p := LookupProvider("Zephyr")
	assert.Equal(t, "Zephyr", p.DisplayName)
	assert.Equal(t, "testCaseKey", p.IDKey)

	p = LookupProvider("homegrown")
	assert.Equal(t, "homegrown", p.DisplayName)
	assert.Equal(t, "test-case", p.IdentityBlock)
}
