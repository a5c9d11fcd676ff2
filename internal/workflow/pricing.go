package workflow

import (
	"fmt"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// ComputeTotal derives the trip total from the current selections:
// outbound price, plus the return leg when chosen, plus room price per
// night times nights. The computation is pure and synchronous.
//
// All prices entering here must share one currency; a mismatch is an
// upstream defect and comes back as models.ErrCurrencyMismatch.
func ComputeTotal(sel models.Selection, nights int) (models.Money, error) {
	var total models.Money
	var err error

	if sel.OutboundFlight != nil {
		total, err = total.Add(sel.OutboundFlight.Price)
		if err != nil {
			return models.Money{}, fmt.Errorf("outbound flight: %w", err)
		}
	}
	if sel.ReturnFlight != nil {
		total, err = total.Add(sel.ReturnFlight.Price)
		if err != nil {
			return models.Money{}, fmt.Errorf("return flight: %w", err)
		}
	}
	if sel.RoomType != nil {
		if nights < 1 {
			// Stay dates not captured yet; price a single night rather
			// than hiding the room cost entirely.
			nights = 1
		}
		total, err = total.Add(sel.RoomType.PricePerNight.Times(nights))
		if err != nil {
			return models.Money{}, fmt.Errorf("room: %w", err)
		}
	}

	return total, nil
}
