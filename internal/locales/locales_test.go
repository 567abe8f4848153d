package locales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "ur"}, catalog.Locales())

	en, ok := catalog.Messages("en")
	require.True(t, ok)
	assert.Equal(t, "Open", en["job_post.status.pending"])
	assert.Equal(t, "Kamwaalay", en["app.name"])

	ur, ok := catalog.Messages("ur")
	require.True(t, ok)
	assert.Len(t, ur, len(en))

	_, ok = catalog.Messages("fr")
	assert.False(t, ok)
}

func TestTranslate(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Full time", catalog.Translate("en", "work_types.full_time"))
	assert.Equal(t, "کل وقتی", catalog.Translate("ur", "work_types.full_time"))
	assert.Equal(t, "Full time", catalog.Translate("fr", "work_types.full_time"))
	assert.Equal(t, "missing.key", catalog.Translate("en", "missing.key"))
}

func TestMessagesReturnsCopy(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	messages, _ := catalog.Messages("en")
	messages["app.name"] = "changed"

	again, _ := catalog.Messages("en")
	assert.Equal(t, "Kamwaalay", again["app.name"])
}
