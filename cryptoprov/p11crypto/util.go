package p11crypto

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// SlotTokenInfo describes a token in a slot
type SlotTokenInfo struct {
	id           uint
	description  string
	label        string
	manufacturer string
	model        string
	serial       string
	flags        uint
}

// ID returns the slot ID
func (ti *SlotTokenInfo) ID() uint { return ti.id }

// Label returns the token label
func (ti *SlotTokenInfo) Label() string { return ti.label }

// Serial returns the token serial number
func (ti *SlotTokenInfo) Serial() string { return ti.serial }

// Model returns the token model
func (ti *SlotTokenInfo) Model() string { return ti.model }

// CurrentSlotID returns current slot ID
func (p *Provider) CurrentSlotID() uint {
	return p.slot.id
}

// TokensInfo returns list of tokens
func (p *Provider) TokensInfo() ([]*SlotTokenInfo, error) {
	list := []*SlotTokenInfo{}
	slots, err := p.ctx.GetSlotList(true)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.KV(xlog.DEBUG, "slots", len(slots))

	for _, slotID := range slots {
		si, err := p.ctx.GetSlotInfo(slotID)
		if err != nil {
			return nil, errors.WithMessagef(err, "GetSlotInfo: %d", slotID)
		}
		ti, err := p.ctx.GetTokenInfo(slotID)
		if err != nil {
			logger.KV(xlog.ERROR,
				"reason", "GetTokenInfo",
				"slotID", slotID,
				"manufacturer", si.ManufacturerID,
				"description", si.SlotDescription,
				"err", err.Error())
		} else if ti.SerialNumber != "" || ti.Label != "" {
			list = append(list, &SlotTokenInfo{
				id:           slotID,
				description:  si.SlotDescription,
				label:        ti.Label,
				manufacturer: strings.TrimSpace(ti.ManufacturerID),
				model:        strings.TrimSpace(ti.Model),
				serial:       ti.SerialNumber,
				flags:        ti.Flags,
			})
		}
	}
	return list, nil
}

// findSlot returns the first token matching the serial or label.
// Empty serial and label selects the first token.
func (p *Provider) findSlot(serial, label string) (*SlotTokenInfo, error) {
	list, err := p.TokensInfo()
	if err != nil {
		return nil, err
	}
	for _, ti := range list {
		if matchToken(ti, serial, label) {
			return ti, nil
		}
	}
	return nil, errors.Errorf("token not found: serial=%q, label=%q", serial, label)
}

func matchToken(ti *SlotTokenInfo, serial, label string) bool {
	if serial == "" && label == "" {
		return true
	}
	return (serial != "" && strings.TrimSpace(ti.serial) == serial) ||
		(label != "" && strings.TrimSpace(ti.label) == label)
}
