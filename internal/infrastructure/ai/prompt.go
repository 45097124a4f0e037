package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhoicas/bodega-ledger/internal/application/ports"
)

// systemPrompt define el rol del modelo y el formato de salida.
const systemPrompt = `Você é um analista de almoxarifado. Analise os dados de estoque e forneça exatamente 3 insights rápidos (em português) sobre itens que precisam de atenção, tendências de saída ou sugestões de organização física.
Devolva SOMENTE um objeto JSON válido, sem markdown, com a estrutura exata:
{"insights": ["<insight 1>", "<insight 2>", "<insight 3>"]}
Cada insight com no máximo 160 caracteres.`

// userPrompt serializa el resumen de stock y los últimos movimientos.
func userPrompt(d ports.StockDigest) (string, error) {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return "", err
	}
	recent, err := json.Marshal(d.Recent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Produtos Atuais: %s\nÚltimas Transações: %s", items, recent), nil
}

type insightsPayload struct {
	Insights []string `json:"insights"`
}

// jsonBlockRe extrae el primer objeto JSON del texto aunque venga envuelto en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseInsights decodifica la respuesta del modelo y se queda con a lo sumo 3 textos no vacíos.
func parseInsights(text string) ([]string, error) {
	clean := extractJSON(text)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON en la respuesta (respuesta: %s)", text)
	}
	var p insightsPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil, fmt.Errorf("AI: respuesta del modelo no es JSON válido: %w", err)
	}
	out := make([]string, 0, 3)
	for _, s := range p.Insights {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == 3 {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("AI: el modelo no devolvió insights")
	}
	return out, nil
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
