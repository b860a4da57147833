package card

import "github.com/mmcdole/releasebot/internal/domain"

// Chooser labels for the category row
const (
	LabelCartoon = "Мультфильмы"
	LabelAnime   = "Аниме"
)

const chooserColumns = 2

// Choice is one genre offered by a chooser
type Choice struct {
	Name string
	ID   int
}

// Chooser lays out random-pick controls: an optional category row
// (cartoons, anime) followed by genres two per row.
func Chooser(kind domain.MediaKind, choices []Choice, categories bool) Controls {
	var rows Controls
	if categories {
		rows = append(rows, []Button{
			{Label: LabelCartoon, Action: domain.RandomAction(kind, domain.SelectCartoon, 0).Encode()},
			{Label: LabelAnime, Action: domain.RandomAction(kind, domain.SelectAnime, 0).Encode()},
		})
	}

	var row []Button
	for _, c := range choices {
		row = append(row, Button{
			Label:  c.Name,
			Action: domain.RandomAction(kind, domain.SelectGenre, c.ID).Encode(),
		})
		if len(row) == chooserColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
