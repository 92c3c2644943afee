package model

import (
	"github.com/benbeisheim/drawbackchess-backend/internal/shared"
)

// ClientPlayer is the seat as shown to clients. TimeLeft is in tenths of a second.
type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    shared.Side `json:"color"`
	TimeLeft int         `json:"timeLeft"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func (p *Players) seat(side shared.Side) *ClientPlayer {
	if side == shared.White {
		return &p.White
	}
	return &p.Black
}
