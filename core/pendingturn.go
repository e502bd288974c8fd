package session

import "sync"

// pendingTurn accumulates partial transcription fragments for the turn
// in flight. Exactly one instance lives per session; it is reset to
// empty by flush at each turn boundary and never persisted.
type pendingTurn struct {
	mu         sync.Mutex
	inputText  string
	outputText string
}

func (p *pendingTurn) appendInput(fragment string) {
	p.mu.Lock()
	p.inputText += fragment
	p.mu.Unlock()
}

func (p *pendingTurn) appendOutput(fragment string) {
	p.mu.Lock()
	p.outputText += fragment
	p.mu.Unlock()
}

// flush atomically reads and clears both sides.
func (p *pendingTurn) flush() (inputText, outputText string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inputText, outputText = p.inputText, p.outputText
	p.inputText, p.outputText = "", ""
	return inputText, outputText
}
