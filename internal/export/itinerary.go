package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// WriteItinerary creates an xlsx itinerary for a submitted booking, for
// expense filing. Returns the path of the written file.
func WriteItinerary(dir string, snap models.SessionSnapshot, bookingID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Itinerary"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	form := snap.Form
	row := 1
	set := func(col string, value any) {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), value)
	}

	set("A", "Booking")
	set("B", bookingID)
	row++
	set("A", "Traveler")
	set("B", fmt.Sprintf("%s %s", form.PrimaryTraveler.FirstName, form.PrimaryTraveler.LastName))
	row++
	set("A", "Route")
	set("B", fmt.Sprintf("%s → %s", form.Trip.Origin, form.Trip.Destination))
	row++
	set("A", "Dates")
	set("B", fmt.Sprintf("%s – %s", form.Trip.DepartureDate, form.Trip.ReturnDate))
	row += 2

	if out := form.Selection.OutboundFlight; out != nil {
		set("A", "Outbound flight")
		set("B", fmt.Sprintf("%s %s", out.Carrier, out.FlightNumber))
		set("C", out.Price.String())
		row++
	}
	if ret := form.Selection.ReturnFlight; ret != nil {
		set("A", "Return flight")
		set("B", fmt.Sprintf("%s %s", ret.Carrier, ret.FlightNumber))
		set("C", ret.Price.String())
		row++
	}
	if hotel := form.Selection.Hotel; hotel != nil {
		set("A", "Hotel")
		set("B", hotel.Name)
		set("C", hotel.Address)
		row++
		if room := form.Selection.RoomType; room != nil {
			set("A", "Room")
			set("B", room.Name)
			set("C", room.PricePerNight.String()+" / night")
			row++
		}
	}
	for i, t := range form.AdditionalTravelers {
		set("A", fmt.Sprintf("Traveler %d", i+2))
		set("B", fmt.Sprintf("%s %s", t.FirstName, t.LastName))
		row++
	}
	row++
	set("A", "Total")
	set("B", snap.Total.String())

	_ = f.SetColWidth(sheetName, "A", "A", 18)
	_ = f.SetColWidth(sheetName, "B", "C", 32)

	filename := fmt.Sprintf("itinerary_%s_%s.xlsx", bookingID, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving itinerary: %w", err)
	}
	return path, nil
}
