package bidding

import (
	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
)

func bidNotifications(res *auction.Resolution, bidderID string) []notify.Notification {
	a := res.Auction
	note := func(k notify.Kind, to string) notify.Notification {
		return notify.Notification{
			Kind:      k,
			Recipient: to,
			AuctionID: a.ID,
			Price:     a.CurrentPrice,
			LeaderID:  a.LeaderID,
			EndTime:   a.EndTime,
		}
	}

	bidderKind, ownerKind := notify.BidAccepted, notify.AuctionNewBid
	if res.Outcome == auction.OutcomeBoughtNow {
		bidderKind, ownerKind = notify.AuctionWon, notify.AuctionSold
	}

	notes := []notify.Notification{note(bidderKind, bidderID)}
	if res.LeaderChanged() && res.PreviousLeader != "" && res.PreviousLeader != bidderID {
		notes = append(notes, note(notify.BidOutbid, res.PreviousLeader))
	}
	return append(notes, note(ownerKind, a.OwnerID))
}

func ejectNotifications(before, after *auction.Auction, bidderID string) []notify.Notification {
	notes := []notify.Notification{{
		Kind:      notify.BidderEjected,
		Recipient: bidderID,
		AuctionID: after.ID,
	}}
	if after.HasLeader() && after.LeaderID != before.LeaderID {
		notes = append(notes, notify.Notification{
			Kind:      notify.AuctionLeaderChanged,
			Recipient: after.LeaderID,
			AuctionID: after.ID,
			Price:     after.CurrentPrice,
			LeaderID:  after.LeaderID,
			EndTime:   after.EndTime,
		})
	}
	return notes
}
