package comments

import "github.com/kovalyov-valentin/news-portal/internal/model"

// Build собирает из плоского списка комментариев лес ответов.
// Порядок корней и ответов внутри одной ветки совпадает с порядком входа.
// Комментарии, чей родитель не найден (и все ответы на них), в лес не попадают.
func Build(flat []model.Comment) []*model.CommentNode {
	// Все узлы лежат в одном срезе, индекс хранит позицию узла по id
	var (
		nodes = make([]model.CommentNode, len(flat))
		index = make(map[int64]int, len(flat))
	)

	for i, c := range flat {
		nodes[i] = model.CommentNode{Comment: c, Replies: []*model.CommentNode{}}
		index[c.ID] = i
	}

	forest := make([]*model.CommentNode, 0)

	for i := range nodes {
		node := &nodes[i]

		if node.ParentID == nil {
			forest = append(forest, node)
			continue
		}

		parent, ok := index[*node.ParentID]
		if !ok || parent == i {
			continue
		}

		nodes[parent].Replies = append(nodes[parent].Replies, node)
	}

	return forest
}

// Count возвращает число комментариев в лесу
func Count(forest []*model.CommentNode) int {
	total := 0

	stack := append([]*model.CommentNode(nil), forest...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		total++
		stack = append(stack, node.Replies...)
	}

	return total
}
