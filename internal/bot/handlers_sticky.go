package bot

import (
	"context"
	"fmt"
	"strconv"
)

func (b *Bot) handleSetSticky(ctx context.Context, req *request) {
	channelID := req.channelArg("channel")
	message := req.arg("message")
	usage := b.prefix + "setsticky <#channel> <interval> <message>"
	if channelID == "" || req.arg("interval") == "" || message == "" {
		req.usage(usage)
		return
	}

	interval, err := strconv.Atoi(req.arg("interval"))
	if err != nil || interval < 1 {
		req.respondError("Interval must be a whole number of at least 1")
		return
	}

	if err := b.stickies.Set(channelID, message, interval); err != nil {
		req.respondError(err.Error())
		return
	}

	req.respond(fmt.Sprintf("Sticky message set for <#%s> every %d messages.", channelID, interval))
}

func (b *Bot) handleRemoveSticky(ctx context.Context, req *request) {
	channelID := req.channelArg("channel")
	if channelID == "" {
		req.usage(b.prefix + "removesticky <#channel>")
		return
	}

	if !b.stickies.Remove(channelID) {
		req.respond(fmt.Sprintf("No sticky message set for <#%s>.", channelID))
		return
	}
	req.respond(fmt.Sprintf("Sticky message removed from <#%s>.", channelID))
}
