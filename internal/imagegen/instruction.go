package imagegen

import (
	"fmt"
	"strings"
)

const defaultMergeInstruction = "Merge the clothing item onto the model seamlessly. Ensure realistic fit, proper lighting, shadows, and perspective. The result should look natural and professional."

// GarmentPrompt builds the text-to-image prompt for a new clothing item.
func GarmentPrompt(g Garment) string {
	description := strings.TrimSpace(g.Description)
	if description == "" {
		description = describeGarment(g)
	}
	return "Ultra high resolution professional fashion product photography.\n" +
		"Create a clothing item based on this description: " + description + "\n" +
		"The clothing should be displayed on a hanger or mannequin against a pure white background.\n" +
		"Professional studio lighting, centered composition.\n" +
		"High quality, detailed, realistic product photography suitable for e-commerce.\n" +
		"Make sure all details from the description are visible and well-represented."
}

// Empty reports whether g carries nothing a prompt could describe.
func (g Garment) Empty() bool {
	return strings.TrimSpace(g.Description) == "" && describeGarment(g) == ""
}

func describeGarment(g Garment) string {
	parts := []string{}
	head := strings.TrimSpace(strings.Join(nonEmpty(g.Type, g.Name), " named "))
	if head != "" {
		parts = append(parts, head)
	}
	if v := strings.TrimSpace(g.Color); v != "" {
		parts = append(parts, "color "+v)
	}
	if v := strings.TrimSpace(g.Style); v != "" {
		parts = append(parts, v+" style")
	}
	if v := strings.TrimSpace(g.Pattern); v != "" {
		parts = append(parts, v+" pattern")
	}
	if v := strings.TrimSpace(g.Fabric); v != "" {
		parts = append(parts, "made of "+v)
	}
	return strings.Join(parts, ", ")
}

// ModelPrompt builds the text-to-image prompt for a synthetic fashion model.
func ModelPrompt(m ModelTraits) string {
	gender := "Female"
	switch strings.ToLower(strings.TrimSpace(m.Gender)) {
	case "masculino", "male", "homem", "m":
		gender = "Male"
	}
	return "Ultra high resolution professional fashion model photo. \n" +
		fmt.Sprintf("%s model, %s ethnicity, %s years old, %s body type.\n", gender, m.Ethnicity, m.AgeRange, m.BodyType) +
		fmt.Sprintf("Hair: %s %s.\n", m.HairColor, m.HairStyle) +
		fmt.Sprintf("Skin tone: %s.\n", m.SkinTone) +
		"Full body shot, standing pose, neutral background, studio lighting, professional photography.\n" +
		"The model should be wearing simple neutral clothing to showcase the body and features clearly.\n" +
		"High quality, detailed, realistic, professional fashion photography."
}

// ExtractionPrompt isolates a garment from a photo onto a white background.
func ExtractionPrompt() string {
	return "Extract and isolate the clothing item from this image.\n" +
		"Remove the model, mannequin, or any person wearing it.\n" +
		"Display the clothing item on a hanger against a pure white background.\n" +
		"The clothing should be centered, well-lit with professional studio lighting.\n" +
		"Maintain all details, textures, colors, and characteristics of the original clothing.\n" +
		"The result should look like a professional product photography for e-commerce.\n" +
		"Ultra high resolution, clean, professional."
}

// MergePrompt composes the model+garment merge prompt. A nil scene or empty
// fields contribute nothing.
func MergePrompt(userPrompt string, scene *SceneSettings) string {
	var sb strings.Builder
	sb.WriteString("Professional fashion photography. ")
	if scene != nil {
		for _, axis := range sceneAxes {
			value := strings.TrimSpace(axis.value(*scene))
			if value == "" {
				continue
			}
			fmt.Fprintf(&sb, axis.format, ScenePhrase(axis.key, value))
		}
	}
	if p := strings.TrimSpace(userPrompt); p != "" {
		sb.WriteString(p)
	} else {
		sb.WriteString(defaultMergeInstruction)
	}
	return sb.String()
}

// ColorEditPrompt asks the provider to recolor the garment and nothing else.
func ColorEditPrompt(color string) string {
	color = strings.TrimSpace(color)
	return "You must maintain the EXACT same image composition and model pose.\n" +
		"ONLY change the color of the clothing item to " + color + ".\n" +
		"Keep everything else identical:\n" +
		"- Same model\n" +
		"- Same pose and position\n" +
		"- Same background\n" +
		"- Same lighting\n" +
		"- Same image composition\n" +
		"ONLY the clothing color should change to " + color + ".\n" +
		"The result must look like the exact same photo, just with the clothing in " + color + " color."
}

// PoseEditPrompt re-renders the same look from another camera angle.
func PoseEditPrompt(p Pose) string {
	return p.Instruction + ". \n" +
		"Maintain the same model and clothing as shown in the reference image.\n" +
		"Professional fashion photography, studio lighting, clean background.\n" +
		"High quality, detailed, realistic."
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
