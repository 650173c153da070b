package domain

// PaletteColor is one of the fixed board colors. The border class is kept
// for rows written by older releases that stored the CSS class instead of
// the color id.
type PaletteColor struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Border string `json:"border"`
}

// DefaultColor is the palette entry used when no color is set.
const DefaultColor = "slate"

// Palette is the fixed set of colors tasks and columns may use.
var Palette = []PaletteColor{
	{ID: "slate", Label: "Padrão", Border: "border-slate-700"},
	{ID: "red", Label: "Vermelho", Border: "border-red-500/50"},
	{ID: "orange", Label: "Laranja", Border: "border-orange-500/50"},
	{ID: "amber", Label: "Amarelo", Border: "border-amber-500/50"},
	{ID: "green", Label: "Verde", Border: "border-green-500/50"},
	{ID: "emerald", Label: "Esmeralda", Border: "border-emerald-500/50"},
	{ID: "teal", Label: "Turquesa", Border: "border-teal-500/50"},
	{ID: "cyan", Label: "Ciano", Border: "border-cyan-500/50"},
	{ID: "blue", Label: "Azul", Border: "border-blue-500/50"},
	{ID: "indigo", Label: "Índigo", Border: "border-indigo-500/50"},
	{ID: "violet", Label: "Violeta", Border: "border-violet-500/50"},
	{ID: "purple", Label: "Roxo", Border: "border-purple-500/50"},
	{ID: "fuchsia", Label: "Fúcsia", Border: "border-fuchsia-500/50"},
	{ID: "pink", Label: "Rosa", Border: "border-pink-500/50"},
	{ID: "rose", Label: "Rosé", Border: "border-rose-500/50"},
}

// LookupColor resolves a palette entry by id, falling back to the legacy
// border-class form and finally to the default color.
func LookupColor(idOrClass string) PaletteColor {
	for _, c := range Palette {
		if c.ID == idOrClass {
			return c
		}
	}
	for _, c := range Palette {
		if c.Border == idOrClass {
			return c
		}
	}
	return Palette[0]
}

// ValidColor reports whether id names a palette entry.
func ValidColor(id string) bool {
	for _, c := range Palette {
		if c.ID == id {
			return true
		}
	}
	return false
}
