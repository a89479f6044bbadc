package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/yieldscope/apy-tracker/internal/chainscan"
	"github.com/yieldscope/apy-tracker/internal/store"
)

// CreateDeposit stores a deposit ledger entry. When a chain scanner is
// configured and the entry carries a tx hash, the on-chain receipt status
// overrides the posted status.
func CreateDeposit(s *store.Store, scanner *chainscan.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tx store.DepositTransaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if tx.UserID == "" {
			http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
			return
		}
		if tx.Amount <= 0 {
			http.Error(w, `{"error":"amount must be positive"}`, http.StatusBadRequest)
			return
		}
		if tx.Status == "" {
			tx.Status = string(chainscan.StatusPending)
		}

		if scanner != nil && tx.TxHash != "" {
			if status, err := scanner.TxStatus(r.Context(), tx.TxHash, tx.Network); err == nil {
				tx.Status = string(status)
			}
		}

		saved, err := s.InsertDepositTransaction(r.Context(), &tx)
		if err != nil {
			http.Error(w, `{"error":"failed to record deposit"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(saved)
	}
}

func ListDeposits(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
			return
		}
		skip, limit := pagination(r)

		items, total, err := s.ListDepositTransactions(r.Context(), userID, skip, limit)
		if err != nil {
			http.Error(w, `{"error":"failed to list deposits"}`, http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []store.DepositTransaction{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": items,
			"total": total,
			"skip":  skip,
			"limit": limit,
		})
	}
}

// CreateWithdrawal stores a withdrawal ledger entry. Withdrawals are a
// separate ledger and never reduce the user's tracked position.
func CreateWithdrawal(s *store.Store, scanner *chainscan.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tx store.WithdrawalTransaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if tx.UserID == "" {
			http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
			return
		}
		if tx.Amount <= 0 {
			http.Error(w, `{"error":"amount must be positive"}`, http.StatusBadRequest)
			return
		}
		if tx.Status == "" {
			tx.Status = string(chainscan.StatusPending)
		}

		if scanner != nil && tx.TxHash != "" {
			if status, err := scanner.TxStatus(r.Context(), tx.TxHash, tx.Network); err == nil {
				tx.Status = string(status)
			}
		}

		saved, err := s.InsertWithdrawalTransaction(r.Context(), &tx)
		if err != nil {
			http.Error(w, `{"error":"failed to record withdrawal"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(saved)
	}
}

func ListWithdrawals(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, `{"error":"user_id required"}`, http.StatusBadRequest)
			return
		}
		skip, limit := pagination(r)

		items, total, err := s.ListWithdrawalTransactions(r.Context(), userID, skip, limit)
		if err != nil {
			http.Error(w, `{"error":"failed to list withdrawals"}`, http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []store.WithdrawalTransaction{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": items,
			"total": total,
			"skip":  skip,
			"limit": limit,
		})
	}
}

func pagination(r *http.Request) (skip, limit int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if v := r.URL.Query().Get("skip"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s >= 0 {
			skip = s
		}
	}
	return skip, limit
}
