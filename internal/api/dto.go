package api

import (
	"poker-tracker/internal/model"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type playerRequest struct {
	Name string `json:"name" binding:"required"`
}

type ledgerEntryRequest struct {
	PlayerID int64   `json:"playerId" binding:"required,gt=0"`
	BuyIns   []int64 `json:"buyIns" binding:"omitempty,max=50,dive,gte=0,lte=1000000000000"`
	CashOut  int64   `json:"cashOut" binding:"gte=0,lte=1000000000000"`
}

type gameRequest struct {
	Date    string               `json:"date" binding:"required"`
	Notes   *string              `json:"notes"`
	Players []ledgerEntryRequest `json:"players" binding:"required,max=100,dive"`
}

type createGameResponse struct {
	GameID int64 `json:"gameId"`
}

type gameResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Notes       *string `json:"notes"`
	TotalBuyIns int64   `json:"total_buyins"`
}

type ledgerEntryResponse struct {
	ID         int64   `json:"id"`
	GameID     int64   `json:"game_id"`
	PlayerID   int64   `json:"player_id"`
	PlayerName string  `json:"player_name"`
	BuyIns     []int64 `json:"buy_ins"`
	CashOut    int64   `json:"cash_out"`
}

type gameDetailResponse struct {
	gameResponse
	Players []ledgerEntryResponse `json:"players"`
}

func newGameResponse(s model.GameSummary) gameResponse {
	return gameResponse{
		ID:          s.ID,
		Date:        model.FormatDate(s.Date),
		Notes:       s.Notes,
		TotalBuyIns: s.TotalBuyIns,
	}
}

func newGameDetailResponse(d *model.GameDetail) gameDetailResponse {
	players := make([]ledgerEntryResponse, 0, len(d.Entries))
	for _, e := range d.Entries {
		buyIns := e.BuyIns
		if buyIns == nil {
			buyIns = []int64{}
		}
		players = append(players, ledgerEntryResponse{
			ID:         e.ID,
			GameID:     e.GameID,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			BuyIns:     buyIns,
			CashOut:    e.CashOut,
		})
	}
	return gameDetailResponse{gameResponse: newGameResponse(d.GameSummary), Players: players}
}
