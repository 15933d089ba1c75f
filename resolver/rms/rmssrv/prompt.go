package rmssrv

// Extraction prompt pair. The user prompt embeds the preprocessed
// stream; its marker tokens carry the segmentation to the model.

const systemPrompt = `You are a professional resume parser. Extract ALL information from the resume text and return ONLY valid JSON.`

const userPromptHeader = `Extract all information from this resume in the following JSON structure:

{
  "contact": {
    "name": string,
    "email": string,
    "phone": string,
    "location": string,
    "website": string,
    "linkedin": string
  },
  "summary": string (professional summary if present),
  "experiences": [{
    "company": string,
    "role": string,
    "location": string,
    "date_begin": string (e.g. "June 2021"),
    "date_end": string ("Present" if ongoing),
    "is_current": boolean,
    "description": string
  }],
  "education": [{
    "institution": string,
    "qualification": string,
    "location": string,
    "date": string,
    "is_graduate": boolean,
    "score": string,
    "score_type": string (e.g. "GPA"),
    "minor": string,
    "description": string
  }],
  "skills": [{
    "category": string,
    "keywords": string (comma-joined list)
  }],
  "projects": [{
    "title": string,
    "organization": string,
    "description": string
  }],
  "involvement": [{
    "organization": string,
    "role": string,
    "location": string,
    "date_begin": string,
    "date_end": string,
    "description": string
  }],
  "certifications": [{
    "name": string,
    "issuer": string,
    "date": string
  }],
  "coursework": [{
    "name": string,
    "institution": string,
    "date": string
  }],
  "publications": [{
    "title": string,
    "publisher": string,
    "date": string,
    "url": string
  }],
  "awards": [{
    "name": string,
    "issuer": string,
    "date": string,
    "description": string
  }],
  "references": [{
    "name": string,
    "title": string,
    "organization": string,
    "email": string,
    "phone": string
  }]
}

IMPORTANT:
- Lines like [SECTION:NAME] mark section boundaries; [BULLETS]...[/BULLETS] wrap bullet lists
- Unpaid, volunteer, coaching or club activity belongs under "involvement", not "experiences"
- If a field is not available, use an empty string
- Maintain chronological order (newest first)
- Return ONLY the JSON, no explanatory text

Resume text:

`

// BuildPrompt returns the system and user prompts for one extraction
func BuildPrompt(preprocessed string) (string, string) {
	return systemPrompt, userPromptHeader + preprocessed
}
