package builder

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// embedMentionRe matches one embed token:
// <embed_mention:type:entity_id:name</embed_mention>
// A closing ">" before the end tag is tolerated and kept out of the name.
var embedMentionRe = regexp.MustCompile(
	`<embed_mention:(user|contact|chat|channel):([0-9a-fA-F-]{36}):(.*?)>?</embed_mention>`,
)

// EmbedUser renders an embed token mentioning a user, for inclusion in a
// message body built with EmbedMentions.
func EmbedUser(huid uuid.UUID, name string) string {
	return embedToken(models.MentionUser, huid, name)
}

// EmbedContact renders an embed token mentioning a contact.
func EmbedContact(huid uuid.UUID, name string) string {
	return embedToken(models.MentionContact, huid, name)
}

// EmbedChat renders an embed token mentioning a group chat.
func EmbedChat(chatID uuid.UUID, name string) string {
	return embedToken(models.MentionChat, chatID, name)
}

// EmbedChannel renders an embed token mentioning a channel.
func EmbedChannel(chatID uuid.UUID, name string) string {
	return embedToken(models.MentionChannel, chatID, name)
}

func embedToken(t models.MentionType, entityID uuid.UUID, name string) string {
	return fmt.Sprintf("<embed_mention:%s:%s:%s</embed_mention>", t, entityID, name)
}

// substituteEmbedMentions replaces every embed token in body with the
// messenger's on-wire placeholder and returns the parsed mention records.
// Mention ids are freshly generated.
func substituteEmbedMentions(body string) (string, []models.Mention, error) {
	var mentions []models.Mention
	var parseErr error

	out := embedMentionRe.ReplaceAllStringFunc(body, func(token string) string {
		groups := embedMentionRe.FindStringSubmatch(token)
		entityID, err := uuid.Parse(groups[2])
		if err != nil {
			if parseErr == nil {
				parseErr = fmt.Errorf("embed mention carries malformed entity id %q", groups[2])
			}
			return token
		}

		var mention models.Mention
		switch models.MentionType(groups[1]) {
		case models.MentionUser:
			mention = models.NewUserMention(entityID, groups[3])
		case models.MentionContact:
			mention = models.NewContactMention(entityID, groups[3])
		case models.MentionChat:
			mention = models.NewChatMention(entityID, groups[3])
		case models.MentionChannel:
			mention = models.NewChannelMention(entityID, groups[3])
		}
		mentions = append(mentions, mention)
		return onWirePlaceholder(mention)
	})

	if parseErr != nil {
		return "", nil, parseErr
	}
	return out, mentions, nil
}

// onWirePlaceholder renders the in-text placeholder the messenger expects
// for a mention.
func onWirePlaceholder(m models.Mention) string {
	switch m.Type {
	case models.MentionContact:
		return fmt.Sprintf("@@{mention:%s}", m.MentionID)
	case models.MentionChat, models.MentionChannel:
		return fmt.Sprintf("##{mention:%s}", m.MentionID)
	default:
		return fmt.Sprintf("@{mention:%s}", m.MentionID)
	}
}
