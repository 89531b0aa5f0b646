package share

import (
	"net/url"
	"testing"

	"codeberg.org/boomline/server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	link, err := Link("twitter", "Sun & sand #summer")
	require.NoError(t, err)
	assert.Equal(t, "https://twitter.com/intent/tweet?text=Sun%20%26%20sand%20%23summer", link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Sun & sand #summer", u.Query().Get("text"))

	link, err = Link("  WhatsApp ", "hi")
	require.NoError(t, err)
	assert.Equal(t, "https://api.whatsapp.com/send?text=hi", link)
}

func TestLink_Rejections(t *testing.T) {
	var v *errors.ValidationError

	_, err := Link("myspace", "hi")
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "platform", v.Field)

	_, err = Link("twitter", "  ")
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "text", v.Field)
}

func TestLinks(t *testing.T) {
	links, err := Links("hello world")
	require.NoError(t, err)

	assert.Len(t, links, 6)
	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=hello%20world", links["facebook"])
	assert.Equal(t, "https://www.linkedin.com/sharing/share-offsite/?url=hello%20world", links["linkedin"])
	assert.Equal(t, "https://reddit.com/submit?title=hello%20world", links["reddit"])
	assert.Equal(t, "https://pinterest.com/pin/create/button/?description=hello%20world", links["pinterest"])

	assert.Equal(t, []string{"facebook", "linkedin", "pinterest", "reddit", "twitter", "whatsapp"}, Platforms())
}
