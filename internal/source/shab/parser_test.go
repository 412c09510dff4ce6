package shab

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{}, logger)
}

const auctionXML = `<?xml version="1.0" encoding="UTF-8"?>
<SB01:publication xmlns:SB01="https://shab.ch/shab/SB01-export">
  <meta>
    <id>5f9c1e2a-0001</id>
    <rubric>SB</rubric>
    <subRubric>SB01</subRubric>
  </meta>
  <content>
    <auction>
      <date>2024-06-15</date>
      <time>14:00</time>
      <location>Betreibungsamt Zürich, Gessnerallee 50</location>
    </auction>
    <auctionObjects>&lt;p&gt;Grundstück GB Nr. 1234, Wohnhaus mit Garage&lt;/p&gt;</auctionObjects>
  </content>
</SB01:publication>`

const noAuctionXML = `<?xml version="1.0" encoding="UTF-8"?>
<SB01:publication xmlns:SB01="https://shab.ch/shab/SB01-export">
  <content>
    <remarks>Die Versteigerung wird abgesagt.</remarks>
  </content>
</SB01:publication>`

func TestParsePublicationXML_WithAuction(t *testing.T) {
	c := testClient(t)

	parsed, err := c.ParsePublicationXML(auctionXML)
	require.NoError(t, err)

	require.Len(t, parsed.Auctions, 1)
	auction := parsed.Auctions[0]
	assert.Equal(t, "2024-06-15", auction.Date)
	assert.Equal(t, "14:00", auction.Time)
	assert.Equal(t, "Betreibungsamt Zürich, Gessnerallee 50", auction.Location)

	require.Len(t, auction.Objects, 1)
	assert.Equal(t, "<p>Grundstück GB Nr. 1234, Wohnhaus mit Garage</p>", auction.Objects[0].Text)
	assert.Equal(t, 1, auction.Objects[0].Order)

	assert.Equal(t, "de", parsed.Language)
}

func TestParsePublicationXML_NoAuctionElement(t *testing.T) {
	c := testClient(t)

	parsed, err := c.ParsePublicationXML(noAuctionXML)
	require.NoError(t, err)

	assert.Empty(t, parsed.Auctions)
	assert.Equal(t, "de", parsed.Language)
}

func TestParsePublicationXML_Malformed(t *testing.T) {
	c := testClient(t)

	parsed, err := c.ParsePublicationXML("<publication><content><auction>")
	require.Error(t, err)
	assert.Nil(t, parsed)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "german legal term",
			text: "Das Betreibungsamt versteigert am 15. Juni",
			want: "de",
		},
		{
			name: "german auction term",
			text: "Öffentliche Versteigerung einer Liegenschaft",
			want: "de",
		},
		{
			name: "french auction term",
			text: "Vente aux enchères publiques d'un immeuble",
			want: "fr",
		},
		{
			name: "french office",
			text: "L'office des poursuites de Genève procède à la vente",
			want: "fr",
		},
		{
			name: "italian auction term",
			text: "Pubblico incanto di un fondo",
			want: "it",
		},
		{
			name: "italian office",
			text: "L'ufficio esecuzione e fallimenti di Lugano",
			want: "it",
		},
		{
			name: "no marker defaults to german",
			text: "lorem ipsum dolor sit amet",
			want: "de",
		},
		{
			name: "empty defaults to german",
			text: "",
			want: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}
