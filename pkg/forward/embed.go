package forward

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
)

// ReconstructEmbed turns an embed as rendered by Discord back into one that can
// be sent again. Only the fields a bot is allowed to set are kept; anything
// missing on the source stays unset.
func ReconstructEmbed(embed discord.Embed) discord.Embed {
	rebuilt := discord.Embed{
		Title:       embed.Title,
		Description: embed.Description,
		URL:         embed.URL,
		Color:       embed.Color,
	}
	if embed.Timestamp != nil {
		rebuilt.Timestamp = json.Ptr(*embed.Timestamp)
	}
	if author := embed.Author; author != nil {
		rebuilt.Author = &discord.EmbedAuthor{
			Name:    author.Name,
			URL:     author.URL,
			IconURL: author.IconURL,
		}
	}
	if footer := embed.Footer; footer != nil {
		rebuilt.Footer = &discord.EmbedFooter{
			Text:    footer.Text,
			IconURL: footer.IconURL,
		}
	}
	if image := embed.Image; image != nil && image.URL != "" {
		rebuilt.Image = &discord.EmbedResource{URL: image.URL}
	}
	if thumbnail := embed.Thumbnail; thumbnail != nil && thumbnail.URL != "" {
		rebuilt.Thumbnail = &discord.EmbedResource{URL: thumbnail.URL}
	}
	for _, field := range embed.Fields {
		rebuiltField := discord.EmbedField{
			Name:  field.Name,
			Value: field.Value,
		}
		if field.Inline != nil {
			rebuiltField.Inline = json.Ptr(*field.Inline)
		}
		rebuilt.Fields = append(rebuilt.Fields, rebuiltField)
	}
	return rebuilt
}

func ReconstructEmbeds(embeds []discord.Embed) []discord.Embed {
	if len(embeds) == 0 {
		return nil
	}
	rebuilt := make([]discord.Embed, 0, len(embeds))
	for _, embed := range embeds {
		rebuilt = append(rebuilt, ReconstructEmbed(embed))
	}
	return rebuilt
}
