package ai

const CandidateTermsPrompt = `
# Task Context
You are extracting key terms from a lecture transcript.

# Background Data
%s

# Detailed Task Description & Rules
- Extract ALL significant terms, concepts, ideas, frameworks and themes.
- Include technical terms, named concepts and abstract ideas.
- Include both explicit terms and implicit themes.
- Aim for 15-30 candidates.

# Immediate Task Description or Request
Return ONLY a JSON array of strings. Do not add explanations or markdown.
`

const RefineConceptsPrompt = `
# Task Context
You are refining candidate terms into structured lecture concepts.

# Background Data
Candidate terms:
%s

Lecture excerpt:
%s

# Detailed Task Description & Rules
1. Select the 8-15 MOST IMPORTANT concepts from the candidates.
2. For each concept determine:
   - label: a clear, concise name (2-5 words)
   - type: exactly one of %s
   - description: one sentence, under 20 words
   - popularity: 1-5, where 5 = central to the lecture and 1 = briefly mentioned
3. Prefer concepts that are central to the main argument, discussed repeatedly,
   or abstract/technical rather than mere examples.

# Immediate Task Description or Request
Return ONLY a JSON array of objects with the fields label, type, description and popularity.
Do not add explanations or markdown.

# Example
[{"label": "Gradient Descent", "type": "algorithm", "description": "Iterative method that follows the negative gradient.", "popularity": 5}]
`

const EdgePrompt = `
# Task Context
You are identifying relationships between lecture concepts with popularity-based edge density.

# Background Data
Concepts (popularity 1-5):
%s

Lecture context:
%s

# Detailed Task Description & Rules
Popularity rules:
- Popularity 5 (central): 4-6 edges
- Popularity 4 (important): 3-4 edges
- Popularity 3 (moderate): 2-3 edges
- Popularity 1-2 (minor): 1-2 edges

Instructions:
1. Create edges proportional to concept popularity; central concepts act as hubs.
2. Every concept must have at least one edge, incoming or outgoing.
3. Build chains and clusters, not only star patterns.
4. Use ONLY concept ids from the list above.
5. Aim for %d edges in total.

Relation types:
- depends_on: understanding A requires understanding B first
- leads_to: A naturally develops into or motivates B
- example_of: A is a specific instance illustrating B
- derived_from: A is intellectually built from B

Do NOT connect one concept to everything, leave a concept isolated, or relate unrelated concepts.

# Immediate Task Description or Request
Return ONLY a JSON array, no markdown:
[{"from": "C5", "to": "C14", "relation": "depends_on"}]
`

const ConnectivityPrompt = `
# Task Context
You are making sure every lecture concept has at least one connection.

# Background Data
Concepts:
%s

Isolated concepts (need edges):
%s

Existing edges (sample):
%s

# Detailed Task Description & Rules
1. Create 1-2 edges for EACH isolated concept above.
2. Connect them by shared themes or types, logical dependencies or context.
3. Prefer connecting to high-popularity concepts when it makes sense.
4. Use ONLY concept ids from the concept list and ONLY the relations
   depends_on, leads_to, example_of, derived_from.

# Immediate Task Description or Request
Return ONLY a JSON array, no markdown:
[{"from": "C5", "to": "C14", "relation": "depends_on"}]
`

// NoLectureContext fills the lecture context slot of EdgePrompt for the
// conceptual pass, which relates concepts by their descriptions only.
const NoLectureContext = "(none, relate the concepts by their descriptions)"
