package analyzer

import (
	"fmt"
	"strings"
)

// systemInstruction accompanies every request regardless of content.
const systemInstruction = "You are an expert cosmetic chemist. You are extremely precise with EWG scores. If an ingredient has a known EWG score, you must provide it. You MUST separate combined ingredients into individual entries (e.g. 'X & Y' -> 'X', 'Y'). You also identify ingredients banned by major retailers (Credo, Sephora, etc). You rely on the scientific consensus from CIR and SCCS. When identifying the product, you act like a detective: you MUST match the ingredient order (especially the first 10) against databases like INCI Decoder to find the correct product."

const imageInstruction = "Analyze the ingredient list visible in this image. Read the label exactly as written. If no specific ingredients are visible, describe what you see but return an empty ingredient list. CRITICAL: Separate ingredients listed together (e.g. 'Retinol and Polysorbate 20' must be two separate items)."

const closingInstruction = "Provide a strict safety assessment based on modern clean beauty standards. \n\n1. PRODUCT MATCHING: Identify the exact commercial product. \n   - RULE: The FIRST 10 INGREDIENTS in the input MUST match the product's formula in the EXACT order.\n   - REFERENCE: Check INCI Decoder, Sephora, Ulta, Nykaa, and Amazon.\n2. EWG SCORING: Provide the exact EWG Skin Deep score (1-10). If a range exists (e.g., 3-5), use the HIGHEST value (5).\n3. RETAILER STANDARDS: Check against 'Dirty Lists' from Credo Beauty, Sephora Clean, Beauty Heroes, and Made Safe.\n4. SOURCES: Cite verifiable scientific titles."

// Part is one fragment of the request content: either free text or an
// inline image carried as a base64 payload with its mime type.
type Part struct {
	Text   string
	Inline *InlineImage
}

// InlineImage is an embedded image payload. Data is base64-encoded.
type InlineImage struct {
	MIMEType string
	Data     string
}

// ErrEmptySubmission is returned when BuildParts is called with neither
// text nor image. Callers must reject empty submissions before building.
var ErrEmptySubmission = fmt.Errorf("submission has neither text nor image")

// ParseDataURI splits a data:<mime>;base64,<payload> string into its mime
// type and payload. Anything not in that form is treated as a bare base64
// payload of a JPEG.
func ParseDataURI(image string) (mimeType, data string) {
	rest, ok := strings.CutPrefix(image, "data:")
	if ok {
		if mime, payload, found := strings.Cut(rest, ";base64,"); found && mime != "" {
			return mime, payload
		}
	}
	return "image/jpeg", image
}

// BuildParts constructs the ordered instruction fragments for a submission.
// The image part and its reading instruction come first, then the literal
// text with the separator rule, then the fixed closing assessment block.
func BuildParts(text, image string) ([]Part, error) {
	if text == "" && image == "" {
		return nil, ErrEmptySubmission
	}

	var parts []Part

	if image != "" {
		mimeType, data := ParseDataURI(image)
		parts = append(parts,
			Part{Inline: &InlineImage{MIMEType: mimeType, Data: data}},
			Part{Text: imageInstruction},
		)
	}

	if text != "" {
		parts = append(parts, Part{Text: fmt.Sprintf(`Analyze this list of cosmetic ingredients: %q. TREAT "AND", "&", "WITH" AS SEPARATORS. For example, "Phenoxyethanol and Ethylhexylglycerin" must be split into two separate ingredient entries.`, text)})
	}

	parts = append(parts, Part{Text: closingInstruction})
	return parts, nil
}
