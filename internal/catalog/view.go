package catalog

import "time"

const StorefrontPath = "/"

// View is everything the storefront renders for one filter over one
// snapshot.
type View struct {
	Filter       Filter
	Products     []Product
	Shelves      Shelves
	Categories   []Category
	CanonicalURL string
	FetchedAt    time.Time
}

func BuildView(snap *Snapshot, f Filter) View {
	products := Apply(snap.Products(), f)
	return View{
		Filter:       f,
		Products:     products,
		Shelves:      Partition(products),
		Categories:   snap.Categories(),
		CanonicalURL: CanonicalURL(StorefrontPath, f),
		FetchedAt:    snap.FetchedAt(),
	}
}
