package projects

import (
	"fmt"

	"github.com/LDK/javascriv-api/internal/domain/file"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
	"github.com/LDK/javascriv-api/pkg/validator"
)

// validateTree checks every node of a submitted tree before anything is
// written. Duplicate paths are reported as conflicts, the same as the
// storage constraint would.
func validateTree(nodes []*file.Node) error {
	seen := make(map[string]bool)
	count := 0
	return walkTree(nodes, 0, func(n *file.Node) error {
		count++
		if count > maxTreeNodes {
			return apperrors.Validation(fmt.Sprintf(msgTreeTooLargeFmt, maxTreeNodes))
		}
		if err := validateNode(n); err != nil {
			return err
		}
		if seen[n.Path] {
			return apperrors.Conflict(fmt.Sprintf(msgDuplicatePathFmt, n.Path))
		}
		seen[n.Path] = true
		return nil
	})
}

func walkTree(nodes []*file.Node, depth int, visit func(*file.Node) error) error {
	if depth >= maxTreeDepth {
		return apperrors.Validation(fmt.Sprintf(msgTreeTooDeepFmt, maxTreeDepth))
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := visit(n); err != nil {
			return err
		}
		if err := walkTree(n.Children, depth+1, visit); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *file.Node) error {
	if !n.Type.Valid() {
		return apperrors.Validation(fmt.Sprintf(msgInvalidNodeTypeFmt, n.Path, n.Type))
	}
	if n.SubType != nil && !n.SubType.Valid() {
		return apperrors.Validation(fmt.Sprintf(msgInvalidNodeSubTypeFmt, n.Path, *n.SubType))
	}
	if err := validator.NodeName(n.Name); err != nil {
		return apperrors.Validation(fmt.Sprintf(msgInvalidNodeFmt, n.Path, err))
	}
	if err := validator.NodePath(n.Path); err != nil {
		return apperrors.Validation(fmt.Sprintf(msgInvalidNodeFmt, n.Path, err))
	}
	return nil
}
