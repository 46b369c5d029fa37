package imagegen

// Garment describes a clothing item as entered on the creation form.
type Garment struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	Style       string `json:"style"`
	Pattern     string `json:"pattern"`
	Fabric      string `json:"fabric"`
	Description string `json:"description"`
}

// ModelTraits describes the synthetic model to generate.
type ModelTraits struct {
	Gender    string `json:"gender"`
	Ethnicity string `json:"ethnicity"`
	AgeRange  string `json:"ageRange"`
	BodyType  string `json:"bodyType"`
	HairColor string `json:"hairColor"`
	HairStyle string `json:"hairStyle"`
	SkinTone  string `json:"skinTone"`
}

// SceneSettings tunes a model+garment merge.
type SceneSettings struct {
	Pose     string `json:"pose"`
	Scenario string `json:"scenario"`
	Lighting string `json:"lighting"`
	Style    string `json:"style"`
}

// Pose is one named camera angle of the pose pack.
type Pose struct {
	Name        string
	Instruction string
}

// PosePack is the fixed five-angle axis used for pose generation.
var PosePack = []Pose{
	{Name: "frontal", Instruction: "Full frontal view, model facing camera directly, standing straight"},
	{Name: "costas", Instruction: "Full back view, model with back to camera, showing rear of clothing"},
	{Name: "perfil", Instruction: "Side profile view, model turned 90 degrees, showing side of clothing"},
	{Name: "detalhe_superior", Instruction: "Close-up detail shot focusing on upper section of clothing, high detail"},
	{Name: "detalhe_inferior", Instruction: "Close-up detail shot focusing on lower section of clothing, high detail"},
}

// ColorPalette is used when a caller asks for a number of color variations
// without naming the colors.
var ColorPalette = []string{
	"red", "navy blue", "emerald green", "black", "white",
	"mustard yellow", "pastel pink", "purple", "burnt orange", "heather gray",
}

// PaletteColors returns the first n palette colors, clamped to the palette size.
func PaletteColors(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(ColorPalette) {
		n = len(ColorPalette)
	}
	out := make([]string, n)
	copy(out, ColorPalette[:n])
	return out
}
