package prompt

// QAPromptID identifies the retrieval question-answering prompt.
const QAPromptID = "rag_qa"

func init() {
	DefaultRegistry().Register(&Prompt{
		ID:          QAPromptID,
		Content:     qaPromptContent,
		Description: "Grounded question answering over retrieved document chunks",
	})
}

const qaPromptContent = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.
Question: {{question}}
Context: {{context}}
Answer:`

// RenderQA builds the QA prompt for a question and its retrieved
// context.
func RenderQA(question, context string) (string, error) {
	b, err := NewBuilder(DefaultRegistry(), QAPromptID)
	if err != nil {
		return "", err
	}
	return b.SetVariable("question", question).SetVariable("context", context).Build(), nil
}
