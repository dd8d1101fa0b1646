package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/traveller/internal/crawler"
	"github.com/nao1215/traveller/internal/model"
)

// printer groups digits so large counts stay readable in the control room.
var printer = message.NewPrinter(language.English)

func crawlMessage(r *model.CrawlReport) string {
	return printer.Sprintf("Crawl done. The graph has %d rooms, %d users and %d servers and was written to %s.",
		r.Counts.Rooms, r.Counts.Users, r.Counts.Servers, r.OutputDir)
}

func joinMessage(s crawler.JoinSummary) string {
	return printer.Sprintf("Join done. Joined %d rooms and followed %d invites. %d rooms had been left before.",
		s.Joined, s.InvitesFollowed, s.LeftRooms)
}

func leaveMessage(s crawler.LeaveSummary) string {
	return printer.Sprintf("Leave done. Left %d of %d rooms, still in %d.",
		s.Left, s.Candidates, s.Remaining())
}

func leaveOneMessage(roomID string) string {
	return printer.Sprintf("Left %s.", roomID)
}
