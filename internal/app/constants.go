package app

// SeatsPerHand is the fixed table size. Every hand needs all four seats
// occupied, by humans or bots, before dealing.
const SeatsPerHand = 4
