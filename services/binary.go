package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"mlmapi/models"
	"mlmapi/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxTreeDepth bounds the upward walk. The level plan tops out at 30 levels,
// so a longer chain means a malformed tree.
const maxTreeDepth = 30

const matchLogPath = "logs/binary-matching.log"

// matchLog appends a timestamped line to the matching log file and mirrors it
// to stdout. The file is operator tooling, not authoritative state, so write
// failures are ignored.
func matchLog(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	log.Printf("[binary] %s", line)

	if err := os.MkdirAll(filepath.Dir(matchLogPath), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(matchLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = fmt.Fprintf(f, "%s %s\n", time.Now().Format(time.RFC3339), line)
}

// UpdateBinaryVolume propagates a new investment up the placement tree,
// crediting each ancestor's left or right leg. This is a best-effort side
// effect of the purchase: every failure mode logs and returns nil so the
// triggering transaction is never rolled back by volume accounting.
func UpdateBinaryVolume(db *gorm.DB, userID uint, investmentAmount float64) error {
	if investmentAmount <= 0 {
		return nil
	}
	if !IsPlanActive(db, models.PlanBinary) {
		matchLog("volume skipped for user %d: binary plan inactive", userID)
		return nil
	}

	var node models.BinaryTreeNode
	if err := db.Where("user_id = ?", userID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			matchLog("volume skipped: user %d has no tree node", userID)
			return nil
		}
		matchLog("volume failed for user %d: %v", userID, err)
		return nil
	}

	visited := map[uint]bool{node.UserID: true}
	parentID := node.ParentID
	position := node.Position

	for depth := 0; parentID != nil && depth < maxTreeDepth; depth++ {
		var parent models.BinaryTreeNode
		if err := db.Where("user_id = ?", *parentID).First(&parent).Error; err != nil {
			matchLog("volume walk stopped at user %d: %v", *parentID, err)
			return nil
		}
		if visited[parent.UserID] {
			matchLog("volume walk aborted: cycle at user %d", parent.UserID)
			return nil
		}
		visited[parent.UserID] = true

		updates := map[string]interface{}{}
		if position == "left" {
			updates["left_volume"] = gorm.Expr("left_volume + ?", investmentAmount)
			updates["left_unmatched"] = gorm.Expr("left_unmatched + ?", investmentAmount)
		} else {
			updates["right_volume"] = gorm.Expr("right_volume + ?", investmentAmount)
			updates["right_unmatched"] = gorm.Expr("right_unmatched + ?", investmentAmount)
		}
		if err := db.Model(&models.BinaryTreeNode{}).Where("id = ?", parent.ID).Updates(updates).Error; err != nil {
			matchLog("volume update failed at node %d: %v", parent.ID, err)
			return nil
		}

		parentID = parent.ParentID
		position = parent.Position
	}
	return nil
}

// matchableVolume is the volume one match would consume at a node.
func matchableVolume(leftUnmatched, rightUnmatched float64) float64 {
	if rightUnmatched < leftUnmatched {
		return rightUnmatched
	}
	return leftUnmatched
}

// exceedsDailyCap reports whether adding candidate to today's matched total
// would cross the cap. A cap of zero disables the check.
func exceedsDailyCap(todayMatched, candidate, cap float64) bool {
	return cap > 0 && todayMatched+candidate > cap
}

// MatchResult reports the outcome of a single match attempt. Matched false
// with a Reason is a normal outcome, not an error.
type MatchResult struct {
	Matched       bool    `json:"matched"`
	Reason        string  `json:"reason,omitempty"`
	MatchedVolume float64 `json:"matched_volume"`
	PayoutAmount  float64 `json:"payout_amount"`
	LeftAfter     float64 `json:"left_after"`
	RightAfter    float64 `json:"right_after"`
}

// CalculateBinaryMatch consumes min(left_unmatched, right_unmatched) at one
// node and pays the configured percentage. The whole match runs in one
// transaction with the user and node rows locked, so two concurrent calls on
// the same user serialize and the second sees the drained counters.
func CalculateBinaryMatch(db *gorm.DB, userID uint) (*MatchResult, error) {
	cfg, err := LoadBinaryConfig(db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &MatchResult{Matched: false, Reason: "binary plan inactive"}, nil
	}

	var result MatchResult
	err = db.Transaction(func(tx *gorm.DB) error {
		var node models.BinaryTreeNode
		if err := lockForUpdate(tx).Where("user_id = ?", userID).First(&node).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = MatchResult{Matched: false, Reason: "no tree node"}
				return nil
			}
			return err
		}

		leftBefore := node.LeftUnmatched
		rightBefore := node.RightUnmatched
		matchedVolume := matchableVolume(leftBefore, rightBefore)
		if matchedVolume < cfg.MinMatchAmount {
			result = MatchResult{Matched: false, Reason: "below minimum match amount"}
			return nil
		}

		// Daily cap from today's audit rows. Over-cap aborts outright; the
		// remainder is not clipped to fit.
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		var todayMatched float64
		if err := tx.Model(&models.BinaryMatch{}).
			Where("user_id = ? AND created_at >= ?", userID, startOfDay).
			Select("COALESCE(SUM(matched_volume), 0)").Scan(&todayMatched).Error; err != nil {
			return err
		}
		if exceedsDailyCap(todayMatched, matchedVolume, cfg.MaxDailyMatch) {
			matchLog("user %d over daily cap: today=%.2f candidate=%.2f cap=%.2f",
				userID, todayMatched, matchedVolume, cfg.MaxDailyMatch)
			result = MatchResult{Matched: false, Reason: "daily match cap reached"}
			return nil
		}

		payout := utils.RoundFloat(matchedVolume*cfg.PayoutPercentage/100, 2)
		leftAfter := utils.RoundFloat(leftBefore-matchedVolume, 2)
		rightAfter := utils.RoundFloat(rightBefore-matchedVolume, 2)

		nowTime := time.Now()
		if err := tx.Model(&node).Updates(map[string]interface{}{
			"left_unmatched":  leftAfter,
			"right_unmatched": rightAfter,
			"matched_to_date": gorm.Expr("matched_to_date + ?", matchedVolume),
			"last_matched_at": nowTime,
		}).Error; err != nil {
			return err
		}

		match := models.BinaryMatch{
			UserID:           userID,
			MatchedVolume:    matchedVolume,
			LeftBefore:       leftBefore,
			RightBefore:      rightBefore,
			LeftAfter:        leftAfter,
			RightAfter:       rightAfter,
			PayoutAmount:     payout,
			PayoutPercentage: cfg.PayoutPercentage,
		}
		if err := tx.Create(&match).Error; err != nil {
			return err
		}

		if _, err := PostLedgerEntry(tx, userID, payout, LedgerEntry{
			Type:          "binary_bonus",
			Description:   fmt.Sprintf("Binary matching bonus on %.2f volume", matchedVolume),
			ReferenceType: "binary_match",
			ReferenceID:   &match.ID,
			Earning:       true,
			EarningField:  "binary_earnings",
			Metadata: map[string]interface{}{
				"matched_volume":    matchedVolume,
				"payout_percentage": cfg.PayoutPercentage,
				"left_before":       leftBefore,
				"right_before":      rightBefore,
			},
		}); err != nil {
			return err
		}

		payoutRow := models.Payout{
			UserID:      userID,
			PayoutType:  "binary_bonus",
			Amount:      payout,
			ReferenceID: &match.ID,
		}
		if err := tx.Create(&payoutRow).Error; err != nil {
			return err
		}

		result = MatchResult{
			Matched:       true,
			MatchedVolume: matchedVolume,
			PayoutAmount:  payout,
			LeftAfter:     leftAfter,
			RightAfter:    rightAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Matched {
		matchLog("user %d matched %.2f volume, payout %.2f", userID, result.MatchedVolume, result.PayoutAmount)
	}
	return &result, nil
}

// MatchRunSummary accumulates counters across one batch run.
type MatchRunSummary struct {
	RunID       string  `json:"run_id"`
	Processed   int     `json:"processed"`
	Matched     int     `json:"matched"`
	TotalPayout float64 `json:"total_payout"`
}

// RunBinaryMatchingForAll executes one match attempt per eligible user,
// oldest matched_to_date first so starved nodes go ahead of heavy earners.
// Each user matches at most once per run; a backlog drains across runs.
func RunBinaryMatchingForAll(db *gorm.DB) (*MatchRunSummary, error) {
	cfg, err := LoadBinaryConfig(db)
	if err != nil {
		return nil, err
	}
	summary := &MatchRunSummary{RunID: uuid.NewString()}
	if cfg == nil {
		matchLog("run %s skipped: binary plan inactive", summary.RunID)
		return summary, nil
	}

	var userIDs []uint
	if err := db.Model(&models.BinaryTreeNode{}).
		Where("LEAST(left_unmatched, right_unmatched) >= ?", cfg.MinMatchAmount).
		Order("matched_to_date ASC").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	matchLog("run %s: %d candidates", summary.RunID, len(userIDs))
	for _, uid := range userIDs {
		summary.Processed++
		res, err := CalculateBinaryMatch(db, uid)
		if err != nil {
			matchLog("run %s: user %d failed: %v", summary.RunID, uid, err)
			continue
		}
		if res.Matched {
			summary.Matched++
			summary.TotalPayout = utils.RoundFloat(summary.TotalPayout+res.PayoutAmount, 2)
		}
	}
	matchLog("run %s done: processed=%d matched=%d payout=%.2f",
		summary.RunID, summary.Processed, summary.Matched, summary.TotalPayout)
	return summary, nil
}

// PlaceInBinaryTree creates the tree node for a newly registered user under
// the sponsor's node, preferring the left leg when both are open. Without a
// sponsor node the user becomes a root.
func PlaceInBinaryTree(db *gorm.DB, userID uint, sponsorID *uint) error {
	node := models.BinaryTreeNode{UserID: userID}

	if sponsorID != nil {
		var sponsorNode models.BinaryTreeNode
		err := db.Where("user_id = ?", *sponsorID).First(&sponsorNode).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			position, parentID, ferr := findOpenSlot(db, &sponsorNode)
			if ferr != nil {
				return ferr
			}
			node.ParentID = &parentID
			node.Position = position
		}
	}
	return db.Create(&node).Error
}

// findOpenSlot walks breadth-first from the sponsor's node to the first node
// missing a child, left before right.
func findOpenSlot(db *gorm.DB, start *models.BinaryTreeNode) (string, uint, error) {
	queue := []uint{start.UserID}
	for steps := 0; len(queue) > 0 && steps < 1<<12; steps++ {
		current := queue[0]
		queue = queue[1:]

		var children []models.BinaryTreeNode
		if err := db.Where("parent_id = ?", current).Find(&children).Error; err != nil {
			return "", 0, err
		}
		hasLeft, hasRight := false, false
		for _, c := range children {
			switch c.Position {
			case "left":
				hasLeft = true
				queue = append(queue, c.UserID)
			case "right":
				hasRight = true
				queue = append(queue, c.UserID)
			}
		}
		if !hasLeft {
			return "left", current, nil
		}
		if !hasRight {
			return "right", current, nil
		}
	}
	return "", 0, errors.New("no open slot found in binary tree")
}
