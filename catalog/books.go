// Package catalog é a tabela estática de livros do site.
package catalog

// Book é um livro do catálogo. CoverSrc é relativo à raiz do site.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	CoverSrc    string `json:"coverSrc"`
	AmazonURL   string `json:"amazonUrl"`
}

var books = []Book{
	{
		ID:          "tao",
		Title:       "The Tao of The Thirteenth God",
		Subtitle:    "A Paranormal Thriller",
		Description: "They all drank the Kool-Aid and one thousand people died. Amadeus and Theo Savoie are twins, estranged for years, the products of a childhood torn apart by religion, abandonment and suicide...",
		CoverSrc:    "/images/books/the-tao-of-the-thirteenth-good.jpg",
		AmazonURL:   "https://www.amazon.com/dp/XXXXXXXX",
	},
	{
		ID:          "vaccine",
		Title:       "Vaccine: A Terrorism Thriller",
		Subtitle:    "War kills in many ways—with speed, with brutality...with stealth.",
		Description: "At the end of the 20th century, America prepares for a war that could transform the world. In the lingering chaos of the Middle East conflict, a pathogen is unleashed. This plague has been engineered to suffocate its...",
		CoverSrc:    "/images/books/vaccine.jpg",
		AmazonURL:   "https://www.amazon.com/dp/XXXXXXXX",
	},
	{
		ID:          "whip",
		Title:       "Whip The Dogs",
		Subtitle:    "An Addiction Thriller",
		Description: "The weapons of war are always changing. Clandestine research has created UNNATURAL BORN KILLERS. In America, Dr. Michael Andross had been unknowingly used as the seed for genetic research...",
		CoverSrc:    "/images/books/whip-the-dogs.jpg",
		AmazonURL:   "https://www.amazon.com/dp/XXXXXXXX",
	},
}

// All devolve uma cópia do catálogo, na ordem de exibição.
func All() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

func ByID(id string) (Book, bool) {
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}
