package rfswitch

import "time"

// ButtonCode identifies a logical button derived from a decoded packet.
// NoButton means the packet (or the absence of one) does not map to a
// button.
type ButtonCode int

// NoButton is returned when no button mapping applies.
const NoButton ButtonCode = -1

type buttonState int

const (
	buttonOff buttonState = iota
	buttonOffDelay
	buttonOn
)

// ButtonDetector turns a stream of decoded packets into discrete
// "button pressed" events, filtering out the repeated transmissions a
// held-down remote button sends. It is layered strictly on top of the
// Receiver's public API and never touches decoder internals — the core
// pulse-decoding state machine has no notion of "buttons" at all.
type ButtonDetector struct {
	debounceDelay time.Duration
	receiver      *Receiver

	state         buttonState
	lastPressed   ButtonCode
	offDelayStart time.Time

	// RCDataToButton maps a matching protocol id and decoded value to a
	// ButtonCode. Return NoButton for packets that are not of interest.
	// Required; a nil func makes every packet resolve to NoButton.
	RCDataToButton func(protocol int, value uint32) ButtonCode

	// OnButtonPressed is invoked once per new button press (press-and-
	// hold is collapsed to a single call; a held button is re-signalled
	// only after it is released and the debounce delay has elapsed).
	OnButtonPressed func(code ButtonCode)
}

// NewButtonDetector builds a detector with the given debounce delay,
// matching the original's default of 250ms when zero is passed.
func NewButtonDetector(debounceDelay time.Duration) *ButtonDetector {
	if debounceDelay <= 0 {
		debounceDelay = 250 * time.Millisecond
	}
	return &ButtonDetector{debounceDelay: debounceDelay, lastPressed: NoButton}
}

// Begin attaches the receiver this detector polls.
func (b *ButtonDetector) Begin(r *Receiver) { b.receiver = r }

// testRcButtonData walks every candidate protocol of the latched message
// looking for one that maps to a known button code, then resets the
// receiver's available flag regardless of the outcome.
func (b *ButtonDetector) testRcButtonData() ButtonCode {
	result := NoButton
	if b.receiver.Available() {
		value := b.receiver.ReceivedValue()
		for i := 0; ; i++ {
			protocolID := b.receiver.ReceivedProtocol(i)
			if protocolID < 0 {
				break
			}
			if b.RCDataToButton == nil {
				continue
			}
			if code := b.RCDataToButton(protocolID, value); code != NoButton {
				result = code
				break
			}
		}
	}
	b.receiver.ResetAvailable()
	return result
}

// ScanRcButtons should be polled from the foreground loop. It advances
// the debounce state machine and invokes OnButtonPressed at most once
// per distinct press.
func (b *ButtonDetector) ScanRcButtons() {
	button := b.testRcButtonData()
	switch b.state {
	case buttonOff:
		if button != NoButton {
			b.signal(button)
			b.lastPressed = button
			b.state = buttonOn
		}
	case buttonOn:
		if button != NoButton {
			if button != b.lastPressed {
				b.signal(button)
				b.lastPressed = button
			}
		} else {
			b.offDelayStart = time.Now()
			b.state = buttonOffDelay
		}
	case buttonOffDelay:
		if button != NoButton {
			if button != b.lastPressed {
				b.signal(button)
				b.lastPressed = button
			} else if time.Since(b.offDelayStart) > b.debounceDelay {
				b.signal(button)
			}
			b.state = buttonOn
		} else if time.Since(b.offDelayStart) > b.debounceDelay {
			b.state = buttonOff
		}
	}
}

func (b *ButtonDetector) signal(code ButtonCode) {
	if b.OnButtonPressed != nil {
		b.OnButtonPressed(code)
	}
}
